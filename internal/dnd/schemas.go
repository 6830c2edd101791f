package dnd

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/rise-and-shine/tabletop/pg"
)

// RefID is an id given as a filter. It is matched by equality.
type RefID string

// SourceCreate is the payload of a new source. Seed files pin ID so that
// spell files can reference it.
type SourceCreate struct {
	ID             *uuid.UUID `json:"id"`
	Name           string     `json:"name"             validate:"required,max=255"`
	NameShort      string     `json:"name_short"       validate:"required,max=32"`
	DndVersion     string     `json:"dnd_version"      validate:"required"`
	DndVersionYear int        `json:"dnd_version_year" validate:"gte=1974"`
	PublishYear    *int       `json:"publish_year"     validate:"omitempty,gte=1974"`
	pg.AuditStamp
}

func (c *SourceCreate) NewEntity() *Source {
	return &Source{
		ID:               idOrNew(c.ID),
		Name:             c.Name,
		NameShort:        c.NameShort,
		DndVersion:       c.DndVersion,
		DndVersionYear:   c.DndVersionYear,
		PublishYear:      c.PublishYear,
		BookkeepingModel: c.Bookkeeping(),
	}
}

func (c *SourceCreate) NaturalKey() string { return c.Name }

type SourceFilters struct {
	Name           string `query:"name"`
	NameShort      string `query:"name_short"`
	DndVersion     string `query:"dnd_version"`
	DndVersionYear *int   `query:"dnd_version_year"`
	PublishYear    *int   `query:"publish_year"`
}

// SpellCreate is the payload of a new spell. ID is optional so that exported
// catalogs can be reloaded with stable ids.
type SpellCreate struct {
	ID                                 *uuid.UUID      `json:"id"`
	SourceID                           uuid.UUID       `json:"source_id"                              validate:"required"`
	Name                               string          `json:"name"                                   validate:"required,max=255"`
	DndVersion                         string          `json:"dnd_version"                            validate:"required"`
	DndVersionYear                     int             `json:"dnd_version_year"                       validate:"gte=1974"`
	SourcePage                         *int            `json:"source_page"                            validate:"omitempty,gte=0"`
	Level                              SpellLevel      `json:"level"                                  validate:"gte=0,lte=9"`
	School                             SpellSchool     `json:"school"                                 validate:"required,oneof=abjuration alteration conjuration divination enchantment evocation transmutation illusion invocation necromancy"`
	IsRitual                           bool            `json:"is_ritual"`
	CastingTime                        string          `json:"casting_time"                           validate:"required"`
	Range                              string          `json:"range"                                  validate:"required"`
	HasVerbalComponent                 bool            `json:"has_verbal_component"`
	HasSomaticComponent                bool            `json:"has_somatic_component"`
	HasMaterialComponent               bool            `json:"has_material_component"`
	Materials                          *string         `json:"materials"`
	HasSpellCost                       bool            `json:"has_spell_cost"`
	AreMaterialsConsumed               bool            `json:"are_materials_consumed"`
	Duration                           string          `json:"duration"                               validate:"required"`
	IsConcentration                    bool            `json:"is_concentration"`
	Description                        string          `json:"description"                            validate:"required"`
	HasSavingThrow                     bool            `json:"has_saving_throw"`
	DifficultyClassSavingThrowOverride *int            `json:"difficulty_class_saving_throw_override" validate:"omitempty,gte=0"`
	DamageType                         *string         `json:"damage_type"                            validate:"omitempty,oneof=mixed special acid bludgeoning cold fire force lightning necrotic piercing poison psychic radiant slashing thunder"`
	AtHigherLevels                     *string         `json:"at_higher_levels"`
	DifficultyClassSavingThrow         *string         `json:"difficulty_class_saving_throw"`
	DifficultyClassType                *string         `json:"difficulty_class_type"                  validate:"omitempty,oneof=str dex con int wis cha"`
	StatBlocks                         json.RawMessage `json:"stat_blocks"`
	IsHomebrew                         bool            `json:"is_homebrew"`
	pg.AuditStamp
}

func (c *SpellCreate) NewEntity() *Spell {
	return &Spell{
		ID:                                 idOrNew(c.ID),
		SourceID:                           c.SourceID,
		Name:                               c.Name,
		DndVersion:                         c.DndVersion,
		DndVersionYear:                     c.DndVersionYear,
		SourcePage:                         c.SourcePage,
		Level:                              c.Level,
		School:                             c.School,
		IsRitual:                           c.IsRitual,
		CastingTime:                        c.CastingTime,
		Range:                              c.Range,
		HasVerbalComponent:                 c.HasVerbalComponent,
		HasSomaticComponent:                c.HasSomaticComponent,
		HasMaterialComponent:               c.HasMaterialComponent,
		Materials:                          c.Materials,
		HasSpellCost:                       c.HasSpellCost,
		AreMaterialsConsumed:               c.AreMaterialsConsumed,
		Duration:                           c.Duration,
		IsConcentration:                    c.IsConcentration,
		Description:                        c.Description,
		HasSavingThrow:                     c.HasSavingThrow,
		DifficultyClassSavingThrowOverride: c.DifficultyClassSavingThrowOverride,
		DamageType:                         c.DamageType,
		AtHigherLevels:                     c.AtHigherLevels,
		DifficultyClassSavingThrow:         c.DifficultyClassSavingThrow,
		DifficultyClassType:                c.DifficultyClassType,
		StatBlocks:                         statBlocks(c.StatBlocks),
		IsHomebrew:                         c.IsHomebrew,
		BookkeepingModel:                   c.Bookkeeping(),
	}
}

func (c *SpellCreate) NaturalKey() string { return c.Name }

func statBlocks(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

type SpellFilters struct {
	Name            string      `query:"name"`
	School          SpellSchool `query:"school"`
	Level           *int        `query:"level"`
	IsRitual        *bool       `query:"is_ritual"`
	IsConcentration *bool       `query:"is_concentration"`
	IsHomebrew      *bool       `query:"is_homebrew"`
	DamageType      string      `query:"damage_type"`
	DndVersion      string      `query:"dnd_version"`
	SourceID        RefID       `query:"source_id"`
}

type ClassCreate struct {
	ID             *uuid.UUID `json:"id"`
	Name           string     `json:"name"             validate:"required,max=255"`
	DndVersion     string     `json:"dnd_version"      validate:"required"`
	DndVersionYear int        `json:"dnd_version_year" validate:"gte=1974"`
	Description    *string    `json:"description"`
	pg.AuditStamp
}

func (c *ClassCreate) NewEntity() *Class {
	return &Class{
		ID:               idOrNew(c.ID),
		Name:             c.Name,
		DndVersion:       c.DndVersion,
		DndVersionYear:   c.DndVersionYear,
		Description:      c.Description,
		BookkeepingModel: c.Bookkeeping(),
	}
}

func (c *ClassCreate) NaturalKey() string { return c.Name }

type ClassFilters struct {
	Name           string `query:"name"`
	DndVersion     string `query:"dnd_version"`
	DndVersionYear *int   `query:"dnd_version_year"`
}

// SpellToClassCreate links one spell to one class.
type SpellToClassCreate struct {
	SpellID    uuid.UUID `json:"spell_id"     validate:"required"`
	DndClassID uuid.UUID `json:"dnd_class_id" validate:"required"`
	SourceID   uuid.UUID `json:"source_id"    validate:"required"`
	pg.AuditStamp
}

func (c *SpellToClassCreate) NewEntity() *SpellToClass {
	return &SpellToClass{
		ID:               uuid.New(),
		SpellID:          c.SpellID,
		DndClassID:       c.DndClassID,
		SourceID:         c.SourceID,
		BookkeepingModel: c.Bookkeeping(),
	}
}

func (c *SpellToClassCreate) NaturalKey() string {
	return c.SpellID.String() + "/" + c.DndClassID.String()
}

type SpellToClassFilters struct {
	SpellID    RefID `query:"spell_id"`
	DndClassID RefID `query:"dnd_class_id"`
	SourceID   RefID `query:"source_id"`
}

func idOrNew(id *uuid.UUID) uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return uuid.New()
	}
	return *id
}
