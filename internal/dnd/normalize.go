package dnd

import (
	"math"

	"github.com/spf13/cast"
)

// NormalizeSpellRow fixes the quirks of exported spell sheets: numbers that
// arrive as floats or float text, saving throw labels given as numbers, the
// legacy description_html column and stat blocks, which are never imported.
func NormalizeSpellRow(values map[string]any) {
	if _, ok := values["description"]; !ok {
		if html, ok := values["description_html"]; ok {
			values["description"] = html
		}
	}
	delete(values, "description_html")

	for _, k := range []string{"difficulty_class_saving_throw_override", "source_page"} {
		v, ok := values[k]
		if !ok {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		if math.IsNaN(f) {
			delete(values, k)
			continue
		}
		values[k] = int(f)
	}

	if v, ok := values["difficulty_class_saving_throw"]; ok {
		values["difficulty_class_saving_throw"] = cast.ToString(v)
	}

	delete(values, "stat_blocks")
}
