package dnd

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/pg"
)

// Source is a published book or supplement spells come from.
type Source struct {
	bun.BaseModel `bun:"table:sources,alias:source"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"           json:"id"`
	Name           string    `bun:"name,notnull,unique"       json:"name"`
	NameShort      string    `bun:"name_short,notnull,unique" json:"name_short"`
	DndVersion     string    `bun:"dnd_version,notnull"       json:"dnd_version"`
	DndVersionYear int       `bun:"dnd_version_year,notnull"  json:"dnd_version_year"`
	PublishYear    *int      `bun:"publish_year"              json:"publish_year"`
	pg.BookkeepingModel
}

// Spell is one spell of a source. Names are unique within a source.
type Spell struct {
	bun.BaseModel `bun:"table:spells,alias:spell"`

	ID                                 uuid.UUID       `bun:"id,pk,type:uuid"                             json:"id"`
	SourceID                           uuid.UUID       `bun:"source_id,notnull,type:uuid,unique:ux_spell" json:"source_id"`
	Name                               string          `bun:"name,notnull,unique:ux_spell"                json:"name"`
	DndVersion                         string          `bun:"dnd_version,notnull"                         json:"dnd_version"`
	DndVersionYear                     int             `bun:"dnd_version_year,notnull"                    json:"dnd_version_year"`
	SourcePage                         *int            `bun:"source_page"                                 json:"source_page"`
	Level                              SpellLevel      `bun:"level,notnull"                               json:"level"`
	School                             SpellSchool     `bun:"school,notnull"                              json:"school"`
	IsRitual                           bool            `bun:"is_ritual,notnull"                           json:"is_ritual"`
	CastingTime                        string          `bun:"casting_time,notnull"                        json:"casting_time"`
	Range                              string          `bun:"range,notnull"                               json:"range"`
	HasVerbalComponent                 bool            `bun:"has_verbal_component,notnull"                json:"has_verbal_component"`
	HasSomaticComponent                bool            `bun:"has_somatic_component,notnull"               json:"has_somatic_component"`
	HasMaterialComponent               bool            `bun:"has_material_component,notnull"              json:"has_material_component"`
	Materials                          *string         `bun:"materials"                                   json:"materials"`
	HasSpellCost                       bool            `bun:"has_spell_cost,notnull"                      json:"has_spell_cost"`
	AreMaterialsConsumed               bool            `bun:"are_materials_consumed,notnull"              json:"are_materials_consumed"`
	Duration                           string          `bun:"duration,notnull"                            json:"duration"`
	IsConcentration                    bool            `bun:"is_concentration,notnull"                    json:"is_concentration"`
	Description                        string          `bun:"description,notnull"                         json:"description"`
	HasSavingThrow                     bool            `bun:"has_saving_throw,notnull"                    json:"has_saving_throw"`
	DifficultyClassSavingThrowOverride *int            `bun:"difficulty_class_saving_throw_override"      json:"difficulty_class_saving_throw_override"`
	DamageType                         *string         `bun:"damage_type"                                 json:"damage_type"`
	AtHigherLevels                     *string         `bun:"at_higher_levels"                            json:"at_higher_levels"`
	DifficultyClassSavingThrow         *string         `bun:"difficulty_class_saving_throw"               json:"difficulty_class_saving_throw"`
	DifficultyClassType                *string         `bun:"difficulty_class_type"                       json:"difficulty_class_type"`
	StatBlocks                         json.RawMessage `bun:"stat_blocks,type:jsonb,nullzero"             json:"stat_blocks"`
	IsHomebrew                         bool            `bun:"is_homebrew,notnull"                         json:"is_homebrew"`
	pg.BookkeepingModel
}

// Class is a character class spells can be learned by.
type Class struct {
	bun.BaseModel `bun:"table:classes,alias:class"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"          json:"id"`
	Name           string    `bun:"name,notnull,unique"      json:"name"`
	DndVersion     string    `bun:"dnd_version,notnull"      json:"dnd_version"`
	DndVersionYear int       `bun:"dnd_version_year,notnull" json:"dnd_version_year"`
	Description    *string   `bun:"description"              json:"description"`
	pg.BookkeepingModel
}

// SpellToClass links a spell of a source to a class that can learn it.
type SpellToClass struct {
	bun.BaseModel `bun:"table:spells_to_classes,alias:spell_to_class"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"                                    json:"id"`
	SpellID    uuid.UUID `bun:"spell_id,notnull,type:uuid,unique:ux_spell_class"     json:"spell_id"`
	DndClassID uuid.UUID `bun:"dnd_class_id,notnull,type:uuid,unique:ux_spell_class" json:"dnd_class_id"`
	SourceID   uuid.UUID `bun:"source_id,notnull,type:uuid,unique:ux_spell_class"    json:"source_id"`
	pg.BookkeepingModel
}
