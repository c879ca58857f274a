package catalog

import "github.com/meltforce/practiceboard/internal/models"

// Builtin returns the fallback catalog used when no document can be loaded.
func Builtin() []models.Menu {
	t := models.Threshold
	return []models.Menu{
		{ID: "warmup", Name: "アップ", CategoryShort: "ｱｯﾌﾟ", Category: models.CategoryWarmup, DurationDefaultMin: 15,
			Condition: models.Condition{MinTotal: t(1)}},
		{ID: "all_knock", Name: "全体ノック", CategoryShort: "守", Category: models.CategoryFielding, DurationDefaultMin: 30,
			Condition: models.Condition{MinTotal: t(4)}},
		{ID: "free_batting", Name: "フリーバッティング", CategoryShort: "打", Category: models.CategoryBatting, DurationDefaultMin: 60,
			Condition: models.Condition{MinP: t(1), MinTotal: t(9)}},
		{ID: "tee_batting", Name: "ティーバッティング", CategoryShort: "打", Category: models.CategoryBatting, DurationDefaultMin: 30,
			Condition: models.Condition{MinTotal: t(2)}},
		{ID: "infield_knock", Name: "内野ノック", CategoryShort: "守", Category: models.CategoryFielding, DurationDefaultMin: 30,
			Condition: models.Condition{MinPlusIF: t(3), MinTotal: t(6)}},
		{ID: "outfield_knock", Name: "外野ノック", CategoryShort: "守", Category: models.CategoryFielding, DurationDefaultMin: 30,
			Condition: models.Condition{MinOF: t(3), MinTotal: t(6)}},
		{ID: "pitching", Name: "ピッチング練習", CategoryShort: "投", Category: models.CategoryPitching, DurationDefaultMin: 30,
			Condition: models.Condition{MinP: t(1), MinTotal: t(4)}},
		{ID: "pepper", Name: "ゴロペッパー", CategoryShort: "守", Category: models.CategoryFielding, DurationDefaultMin: 15,
			Condition: models.Condition{MinTotal: t(2)}},
	}
}
