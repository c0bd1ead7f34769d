package quest

import "github.com/lox/rhythmbet/internal/game"

var builtin = map[game.GameType][]game.Quest{
	game.Arcaea: {
		{ID: "arcaea/grievous-lady-ftr", Description: "Grievous Lady [FTR 11]"},
		{ID: "arcaea/fracture-ray-ftr", Description: "Fracture Ray [FTR 11]"},
		{ID: "arcaea/tempestissimo-byd", Description: "Tempestissimo [BYD 11]"},
		{ID: "arcaea/axium-crisis-ftr", Description: "Axium Crisis [FTR 10+]"},
		{ID: "arcaea/conflict-ftr", Description: "conflict [FTR 10]"},
		{ID: "arcaea/cyaegha-ftr", Description: "Cyaegha [FTR 10+]"},
		{ID: "arcaea/sayonara-hatsukoi-prs", Description: "Sayonara Hatsukoi [PRS 4]"},
		{ID: "arcaea/lost-civilization-ftr", Description: "Lost Civilization [FTR 10]"},
		{ID: "arcaea/singularity-ftr", Description: "Singularity [FTR 10]"},
		{ID: "arcaea/pragmatism-ftr", Description: "PRAGMATISM [FTR 10+]"},
		{ID: "arcaea/ignotus-ftr", Description: "Ignotus [FTR 10]"},
		{ID: "arcaea/testify-byd", Description: "Testify [BYD 12]"},
	},
	game.Phigros: {
		{ID: "phigros/spasmodic-in", Description: "Spasmodic [IN 15]"},
		{ID: "phigros/igallta-in", Description: "Igallta [IN 15]"},
		{ID: "phigros/rrharil-in", Description: "Rrhar'il [IN 15]"},
		{ID: "phigros/destruction-321-in", Description: "DESTRUCTION 3,2,1 [IN 15]"},
		{ID: "phigros/glaciaxion-hd", Description: "Glaciaxion [HD 6]"},
		{ID: "phigros/lyrith-in", Description: "Lyrith [IN 14]"},
		{ID: "phigros/cthugha-in", Description: "Cthugha [IN 15]"},
		{ID: "phigros/rubia-in", Description: "Rubia [IN 12]"},
		{ID: "phigros/aleph-0-in", Description: "aleph-0 [IN 14]"},
		{ID: "phigros/chronomia-in", Description: "Chronomia [IN 14]"},
		{ID: "phigros/nya-in", Description: "NYA!!! [IN 13]"},
		{ID: "phigros/fervent-in", Description: "Fervent [IN 13]"},
	},
}

// Builtin returns the quests bundled for gt, or nil if there are none.
func Builtin(gt game.GameType) []game.Quest {
	return append([]game.Quest(nil), builtin[gt]...)
}
