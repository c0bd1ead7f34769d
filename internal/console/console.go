// Package console drives a game from text commands, one per line.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/rhythmbet/internal/game"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

type command struct {
	usage string
	help  string
	args  int // minimum number of arguments
	run   func(c *Console, args []string) error
}

var commands = map[string]command{
	"join":    {usage: "join <id>...", help: "enroll players", args: 1, run: (*Console).join},
	"leave":   {usage: "leave <id>", help: "remove a player between rounds", args: 1, run: (*Console).leave},
	"start":   {usage: "start", help: "start a new round", run: (*Console).start},
	"next":    {usage: "next", help: "run the current phase", run: (*Console).next},
	"quest":   {usage: "quest", help: "draw or redraw the quest", run: (*Console).quest},
	"verify":  {usage: "verify", help: "confirm the quest and open betting", run: (*Console).verify},
	"bet":     {usage: "bet <bettor> <target> [stake]", help: "bet on who scores best", args: 2, run: (*Console).bet},
	"pass":    {usage: "pass <bettor>", help: "take no bet this turn", args: 1, run: (*Console).pass},
	"play":    {usage: "play <player> <score>", help: "submit a play score", args: 2, run: (*Console).play},
	"buy":     {usage: "buy <player>", help: "queue to buy this turn's card", args: 1, run: (*Console).buy},
	"reveal":  {usage: "reveal", help: "reveal the card for its buyers", run: (*Console).reveal},
	"accept":  {usage: "accept <owner>", help: "play the revealed card", args: 1, run: (*Console).accept},
	"decline": {usage: "decline <owner>", help: "discard the revealed card", args: 1, run: (*Console).decline},
	"status":  {usage: "status", help: "show the game report", run: (*Console).status},
	"winner":  {usage: "winner", help: "show the winner of a finished round", run: (*Console).winner},
}

// Console executes commands against one game.
type Console struct {
	game   *game.Game
	out    io.Writer
	logger *log.Logger
}

// New creates a console writing its responses to out.
func New(g *game.Game, out io.Writer, logger *log.Logger) *Console {
	return &Console{game: g, out: out, logger: logger.WithPrefix("console")}
}

// Game returns the game the console drives.
func (c *Console) Game() *game.Game { return c.game }

// Execute runs a single command line. Blank lines and lines starting with #
// are ignored.
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "quit", "exit":
		return ErrQuit
	case "help":
		c.help()
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", name)
	}
	if len(args) < cmd.args {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	c.logger.Debug("Executing command", "command", name, "args", args)
	return cmd.run(c, args)
}

// Run reads commands from in until it is exhausted, the quit command is
// given or ctx is cancelled. Command errors are printed and do not stop the
// loop.
func (c *Console) Run(ctx context.Context, in io.Reader, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprintf(c.out, "[%s] > ", c.game.Phase())
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.Execute(scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) join(args []string) error {
	for _, id := range args {
		p, err := c.game.Enroll(id)
		if err != nil {
			return err
		}
		c.printf("%s joined (%d players)", p.ID, len(c.game.Players()))
	}
	return nil
}

func (c *Console) leave(args []string) error {
	p, err := c.game.Remove(args[0])
	if err != nil {
		return err
	}
	c.printf("%s left", p.ID)
	return nil
}

func (c *Console) start([]string) error {
	if err := c.game.Start(); err != nil {
		return err
	}
	c.printf("Round started: %d players, %d turns", len(c.game.Players()), c.game.Turns())
	return nil
}

// next runs the current phase and describes what happened.
func (c *Console) next([]string) error {
	before := c.game.Phase()
	if err := c.game.Advance(); err != nil {
		return err
	}
	switch before {
	case game.PhaseDrawEvent:
		c.printf("Turn %d/%d", c.game.Turn(), c.game.Turns())
		c.printEvents()
	case game.PhaseDrawQuest:
		c.printQuest()
	case game.PhaseEndTurn:
		fmt.Fprint(c.out, c.game.Report())
	default:
		c.printf("%s done, now %s", before, c.game.Phase())
	}
	return nil
}

func (c *Console) printEvents() {
	events := c.game.Events()
	if len(events) == 0 {
		c.printf("No event this turn")
		return
	}
	for _, e := range events {
		c.printf("Event: %s", e.Description())
	}
}

func (c *Console) printQuest() {
	if q, ok := c.game.Quest(); ok {
		c.printf("Quest: %s", q.Description)
	}
}

func (c *Console) quest([]string) error {
	if _, err := c.game.DrawQuest(); err != nil {
		return err
	}
	c.printQuest()
	return nil
}

func (c *Console) verify([]string) error {
	if err := c.game.Verify(); err != nil {
		return err
	}
	c.printf("Betting is open")
	return nil
}

func (c *Console) bet(args []string) error {
	stake := 1
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid stake %q", args[2])
		}
		stake = n
	}
	if err := c.game.Bet(args[0], args[1], stake); err != nil {
		return err
	}
	p, _ := c.game.Player(args[0])
	c.printf("%s bets %d on %s", p.ID, p.Stake, p.BetTarget)
	c.announcePhase(game.PhasePlay, "Everyone has bet, play the quest")
	return nil
}

func (c *Console) pass(args []string) error {
	if err := c.game.Pass(args[0]); err != nil {
		return err
	}
	p, _ := c.game.Player(args[0])
	c.printf("%s passes", p.ID)
	c.announcePhase(game.PhasePlay, "Everyone has bet, play the quest")
	return nil
}

func (c *Console) play(args []string) error {
	raw := strings.Join(args[1:], " ")
	if err := c.game.Play(args[0], raw); err != nil {
		return err
	}
	p, _ := c.game.Player(args[0])
	c.printf("%s scored %d", p.ID, *p.PlayingScore)
	c.announcePhase(game.PhasePreprocess, "All scores are in")
	return nil
}

func (c *Console) announcePhase(p game.Phase, msg string) {
	if c.game.Phase() == p {
		c.printf("%s", msg)
	}
}

func (c *Console) buy(args []string) error {
	if err := c.game.BuyCard(args[0]); err != nil {
		return err
	}
	c.printf("Buyers: %s", strings.Join(c.game.CardBuyers(), ", "))
	return nil
}

func (c *Console) reveal([]string) error {
	card, err := c.game.RevealCard()
	if err != nil {
		return err
	}
	c.printf("%s pay %d each", strings.Join(card.Buyers, ", "), c.game.CardCost())
	c.printf("%s draws %s: %s", card.Owner, card.Kind, card.Description)
	c.printf("%s, accept or decline?", card.Owner)
	return nil
}

func (c *Console) accept(args []string) error {
	card := c.game.PendingCard()
	if err := c.game.AcceptCard(args[0]); err != nil {
		return err
	}
	c.printf("%s plays %s", card.Owner, card.Kind)
	return nil
}

func (c *Console) decline(args []string) error {
	card := c.game.PendingCard()
	if err := c.game.DeclineCard(args[0]); err != nil {
		return err
	}
	c.printf("%s discards %s", card.Owner, card.Kind)
	return nil
}

func (c *Console) status([]string) error {
	fmt.Fprint(c.out, c.game.Report())
	return nil
}

func (c *Console) winner([]string) error {
	w, err := c.game.Winner()
	if err != nil {
		return err
	}
	c.printf("Winner: %s", w)
	return nil
}

func (c *Console) help() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c.printf("  %-32s %s", commands[name].usage, commands[name].help)
	}
	c.printf("  %-32s %s", "help", "list commands")
	c.printf("  %-32s %s", "quit", "leave the console")
}
