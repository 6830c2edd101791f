package dnd

// SpellSchool is the school of magic a spell belongs to.
type SpellSchool string

const (
	SchoolAbjuration    SpellSchool = "abjuration"
	SchoolAlteration    SpellSchool = "alteration"
	SchoolConjuration   SpellSchool = "conjuration"
	SchoolDivination    SpellSchool = "divination"
	SchoolEnchantment   SpellSchool = "enchantment"
	SchoolEvocation     SpellSchool = "evocation"
	SchoolTransmutation SpellSchool = "transmutation"
	SchoolIllusion      SpellSchool = "illusion"
	SchoolInvocation    SpellSchool = "invocation"
	SchoolNecromancy    SpellSchool = "necromancy"
)

// SpellLevel is the minimum slot level a spell is cast with; 0 is a cantrip.
type SpellLevel int

const (
	LevelCantrip SpellLevel = 0
	LevelNinth   SpellLevel = 9
)

// DamageType is a kind of damage a spell inflicts.
type DamageType string

const (
	DamageMixed       DamageType = "mixed"
	DamageSpecial     DamageType = "special"
	DamageAcid        DamageType = "acid"
	DamageBludgeoning DamageType = "bludgeoning"
	DamageCold        DamageType = "cold"
	DamageFire        DamageType = "fire"
	DamageForce       DamageType = "force"
	DamageLightning   DamageType = "lightning"
	DamageNecrotic    DamageType = "necrotic"
	DamagePiercing    DamageType = "piercing"
	DamagePoison      DamageType = "poison"
	DamagePsychic     DamageType = "psychic"
	DamageRadiant     DamageType = "radiant"
	DamageSlashing    DamageType = "slashing"
	DamageThunder     DamageType = "thunder"
)

// AbilityScore names the ability a saving throw is made with.
type AbilityScore string

const (
	AbilityStr AbilityScore = "str"
	AbilityDex AbilityScore = "dex"
	AbilityCon AbilityScore = "con"
	AbilityInt AbilityScore = "int"
	AbilityWis AbilityScore = "wis"
	AbilityCha AbilityScore = "cha"
)
