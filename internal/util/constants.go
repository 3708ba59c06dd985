package util

// Redis 键与频道
const (
	UserLockKeyPrefix           = "lock:progress:"
	CatalogAchievementKeyPrefix = "catalog:achievement:"
	CatalogAchievementListKey   = "catalog:achievements:active"
	CatalogQuestKeyPrefix       = "catalog:quest:"
	CatalogQuestListKey         = "catalog:quests:active"
	CatalogKeyPattern           = "catalog:*"
	ProgressionEventsChannel    = "progression:events"
)

const (
	MaxManualXPGrant       = 1000
	DefaultLeaderboard     = 10
	MaxLeaderboardLimit    = 100
	DefaultRecommendations = 10
)
