package constants

// Tier names which strategy produced a row. Stable values, used in logs.
type Tier string

const (
	TierCatalog Tier = "catalog"
	TierMock    Tier = "mock"
	TierOpenAI  Tier = "openai"
	TierGemini  Tier = "gemini"
	TierRules   Tier = "rules"
)
