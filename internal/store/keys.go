package store

// Keys used in the kv table.
const (
	KeyLocation         = "location"
	KeyLocationDate     = "location-date"
	KeyQuranVersion     = "quran-cache-version"
	KeyQuranSavedAt     = "quran-saved-at"
	KeyQuranBookmark    = "quran-bookmark"
	KeyQuranReciter     = "quran-reciter"
	KeyLastNotification = "last-prayer-notification"
	KeyAzkarCategory    = "azkar-category"
	KeyHadithDaily      = "hadith-daily"
)
