package mask_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/tabletop/mask"
)

func pairs(om *mask.OrdMap) [][2]any {
	var out [][2]any
	for p := om.Oldest(); p != nil; p = p.Next() {
		out = append(out, [2]any{p.Key, p.Value})
	}
	return out
}

func TestStructToOrdMap(t *testing.T) {
	type auth struct {
		Token string `json:"token" mask:"true"`
		Realm string `json:"realm"`
	}
	type request struct {
		Name     string            `json:"name"`
		Level    int               `json:"level"    mask:"true"`
		Secret   *string           `json:"secret"   mask:"TRUE"`
		Auth     auth              `json:"auth"`
		Nested   *auth             `json:"nested"`
		Labels   map[string]string `json:"labels"   mask:"true"`
		Ignored  string            `json:"-"`
		YAMLOnly string            `yaml:"yaml_only"`
		internal string
	}

	secret := "hunter2"
	req := request{
		Name:     "fireball",
		Level:    3,
		Secret:   &secret,
		Auth:     auth{Token: "abc", Realm: "dnd"},
		Labels:   nil,
		Ignored:  "x",
		YAMLOnly: "y",
		internal: "z",
	}

	got := pairs(mask.StructToOrdMap(&req))

	assert.Equal(t, [][2]any{
		{"name", "fireball"},
		{"level", "***masked-int***"},
		{"secret", "***masked-string***"},
		{"auth.token", "***masked-string***"},
		{"auth.realm", "dnd"},
		{"nested", (*auth)(nil)},
		{"labels", nil},
		{"yaml_only", "y"},
	}, got)
}

func TestStructToOrdMap_ZeroValuesStayVisible(t *testing.T) {
	type row struct {
		Password string `mask:"true"`
		Count    int    `mask:"true"`
	}

	got := pairs(mask.StructToOrdMap(row{}))

	assert.Equal(t, [][2]any{{"Password", ""}, {"Count", 0}}, got)
}

func TestStructToOrdMap_Nil(t *testing.T) {
	assert.Nil(t, mask.StructToOrdMap(nil))
}
