package model

// Picker defaults used when a board is created without explicit choices.
const (
	DefaultIcon        = "folder"
	DefaultColor       = "#3b82f6"
	DefaultStatusColor = "#64748b"
)

// AvailableIcons is the icon catalog offered by the board picker.
var AvailableIcons = []string{
	"folder", "folder-open", "file-alt", "file", "clipboard", "clipboard-list",
	"user-tie", "users", "user-friends", "user-cog", "user-shield", "id-card",
	"building", "city", "industry", "store", "warehouse", "home",
	"briefcase", "business-time", "handshake", "project-diagram", "sitemap", "stream",
	"chart-line", "chart-bar", "chart-pie", "chart-area", "poll",
	"bullhorn", "ad", "broadcast-tower", "bullseye", "flag", "rocket",
	"envelope", "envelope-open", "inbox", "paper-plane", "mail-bulk", "at",
	"phone", "phone-alt", "mobile-alt", "fax", "comments", "comment-dots",
	"balance-scale", "gavel", "landmark", "certificate", "stamp", "file-contract",
	"graduation-cap", "book", "book-open", "university", "chalkboard", "pencil-alt",
	"lightbulb", "brain", "question-circle", "info-circle", "exclamation-triangle", "bell",
	"cog", "cogs", "tools", "wrench", "sliders-h", "filter",
	"archive", "box", "boxes", "cube", "cubes", "truck",
	"calendar", "calendar-alt", "calendar-check", "clock", "hourglass", "stopwatch",
	"dollar-sign", "coins", "money-bill-wave", "credit-card", "wallet", "receipt",
	"shield-alt", "lock", "unlock", "key", "user-lock", "fingerprint",
	"star", "heart", "thumbs-up", "award", "trophy", "medal",
	"fire", "bolt", "magic", "crown", "gem", "dice",
}

var iconSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AvailableIcons))
	for _, ic := range AvailableIcons {
		m[ic] = struct{}{}
	}
	return m
}()

// ValidIcon reports whether the icon belongs to the catalog.
func ValidIcon(icon string) bool {
	_, ok := iconSet[icon]
	return ok
}

// BoardColors is the color palette offered for board headers.
var BoardColors = []string{
	"#3b82f6", "#f59e0b", "#8b5cf6", "#10b981", "#ef4444", "#ec4899", "#14b8a6",
}

// StatusPresets are the label/color pairs the status picker offers before
// the custom-label field.
var StatusPresets = []StatusValue{
	{Label: "À faire", Color: "#64748b"},
	{Label: "En cours", Color: "#f59e0b"},
	{Label: "Bloqué", Color: "#ef4444"},
	{Label: "Terminé", Color: "#10b981"},
}
