package cache

// Cache key builders. Keys are namespaced by the store's prefix.

// SpeciesKey caches resolved species details by normalized lookup key.
func SpeciesKey(lookup string) string { return "pokemon:" + lookup }

// MaxPageKey caches the number of PC pages of a user.
func MaxPageKey(user string) string { return "pc:max-page:" + user }

// InventoryFullKey caches whether a user's inventory is full.
func InventoryFullKey(user string) string { return "inventory:full:" + user }

// ExperienceDelayKey gates message experience grants.
func ExperienceDelayKey(user string) string { return "experience-delay:" + user }

// MultiplierKey holds a user's current experience multiplier.
func MultiplierKey(user string) string { return "experience:multiplier:" + user }

// MultiplierDelayKey gates multiplier reapplication.
func MultiplierDelayKey(user string) string { return "experience:multiplier:delay:" + user }

// VoiceJoinKey records when a user became active in voice.
func VoiceJoinKey(user string) string { return "voice:join:" + user }
