package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for plan imports.
var UserAgent = "Go-MedReminder/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go MedReminder"
	AppID             = "com.github.tartampluch.go-medreminder"
	KeyringService    = "com.github.tartampluch.go-medreminder"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SQLiteFileName    = "medreminder.db"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the SQLite store, both of which hold health data.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdRoot          = "go-medreminder"
	CmdHistory       = "history"
	CmdExport        = "export"
	CmdDescRoot      = "Medication reminder with full-screen alarms and a dose history"
	CmdDescHistory   = "Print the dose history ledger, newest first"
	CmdDescExport    = "Write the medication schedule as iCalendar to stdout"
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging with source locations"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
	FormatHistoryRow = "%s\t%s\t%s\n"
)

// -----------------------------------------------------------------------------
// Environment (runtime settings, see env.go)
// -----------------------------------------------------------------------------

const (
	EnvPrefix = "MEDREMINDER"

	StoreBackendPreferences = "preferences"
	StoreBackendSQLite      = "sqlite"

	// MaxTickInterval bounds the scheduler period so that no minute can be skipped.
	MaxTickInterval = 30 * time.Second
)

// -----------------------------------------------------------------------------
// Persisted Record Keys
// -----------------------------------------------------------------------------

const (
	RecordProfile     = "user_profile"
	RecordMedications = "medications"
	RecordHistory     = "med_history"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 420
	MainWindowHeight    = 720
	SettingsWindowWidth = 560

	// Preference Keys
	PrefLanguage    = "language"
	PrefServerPort  = "server_port"
	PrefFeedEnabled = "feed_enabled"
	PrefPlanMode    = "plan_source_mode"
	PrefPlanURL     = "plan_url"
	PrefPlanUser    = "plan_username"
	PrefPlanPath    = "plan_local_path"
	PrefLastRun     = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "th"}

// -----------------------------------------------------------------------------
// Domain: Medications, Schedule & Alarm
// -----------------------------------------------------------------------------

const (
	// ClockFormat is the HH:mm 24-hour layout of Medication.Time and of the
	// scheduler's minute key.
	ClockFormat = "15:04"

	// TimeTakenFormat is the fallback layout for HistoryLog.TimeTaken.
	TimeTakenFormat = "15:04:05"

	DefaultMedicationTime = "08:00"
	DefaultIcon           = "fa-pills"
	FallbackDosage        = "-"

	DefaultTickInterval = 1 * time.Second
	AlarmPulseInterval  = 1 * time.Second

	// Tone envelope for the repeating alarm beep.
	ToneFrequencyHz = 880.0
	ToneGain        = 0.3
	ToneFloorGain   = 0.01
	ToneDuration    = 500 * time.Millisecond
	ToneInterval    = 2 * time.Second
	ToneSampleRate  = 44100

	// Photo constraints for UserProfile.ProfileImage.
	ProfilePhotoMaxPx   = 300
	ProfilePhotoQuality = 70
	ProfilePhotoPrefix  = "data:image/jpeg;base64,"

	DefaultSummarySpec = "0 0 21 * * *"
)

// WeekdayTags lists Medication.Days values in Monday-first order.
var WeekdayTags = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MedicationIcons is the fixed icon set offered by the setup screen.
var MedicationIcons = []string{"fa-pills", "fa-capsules", "fa-vial", "fa-prescription-bottle", "fa-tablets"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle         = "win_title"
	TKeyWinSettings      = "win_settings_title"
	TKeyAnnounce         = "alarm_announce"    // Requires Name, Dosage
	TKeySpeechLang       = "speech_lang"       // BCP 47 voice tag
	TKeyFormatTime       = "format_time_taken" // Go time layout
	TKeyAlarmTitle       = "alarm_title"
	TKeyAlarmDosage      = "alarm_dosage" // Requires Dosage
	TKeyBtnTaken         = "btn_taken"
	TKeyBtnSkipped       = "btn_skipped"
	TKeyStatusTaken      = "status_taken"
	TKeyStatusSkipped    = "status_skipped"
	TKeyNotifAlarm       = "notif_alarm" // Requires Name
	TKeyNotifSummary     = "notif_summary"
	TKeyNotifSummaryBody = "notif_summary_body" // Requires Taken, Skipped
	TKeyNotifImportOK    = "notif_import_ok"    // Requires Count
	TKeyNotifImportErr   = "notif_import_err"

	TKeyLblProfile      = "lbl_profile"
	TKeyLblName         = "lbl_name"
	TKeyLblDisease      = "lbl_disease"
	TKeyLblBirthDate    = "lbl_birth_date"
	TKeyHintName        = "hint_name"
	TKeyHintDisease     = "hint_disease"
	TKeyHintBirthDate   = "hint_birth_date"
	TKeyBtnPhoto        = "btn_photo"
	TKeyBtnSaveProfile  = "btn_save_profile"
	TKeyLblProcessing   = "lbl_processing"
	TKeyErrBirthDate    = "err_birth_date"
	TKeyLblNoDisease    = "lbl_no_disease"
	TKeyLblActiveCount  = "lbl_active_count" // Requires Count
	TKeyLblMyMeds       = "lbl_my_medications"
	TKeyLblEmptyMeds    = "lbl_empty_medications"
	TKeyLblTimeSuffix   = "lbl_time_suffix" // Requires Time
	TKeyBtnAdd          = "btn_add"
	TKeyBtnEdit         = "btn_edit"
	TKeyBtnHistory      = "btn_history"
	TKeyBtnProfile      = "btn_profile"
	TKeyBtnSettings     = "btn_settings"
	TKeyLblActive       = "lbl_active"
	TKeyLblNewMed       = "lbl_new_medication"
	TKeyLblEditMed      = "lbl_edit_medication"
	TKeyLblMedName      = "lbl_med_name"
	TKeyLblDosage       = "lbl_dosage"
	TKeyLblTime         = "lbl_time"
	TKeyLblDays         = "lbl_days"
	TKeyLblIcon         = "lbl_icon"
	TKeyHintMedName     = "hint_med_name"
	TKeyHintDosage      = "hint_dosage"
	TKeyBtnCreate       = "btn_create"
	TKeyBtnUpdate       = "btn_update"
	TKeyBtnDelete       = "btn_delete"
	TKeyBtnBack         = "btn_back"
	TKeyConfirmDelTitle = "confirm_delete_title"
	TKeyConfirmDelMsg   = "confirm_delete_msg" // Requires Name
	TKeyErrMedInvalid   = "err_medication_invalid"
	TKeyLblHistory      = "lbl_history"
	TKeyLblEmptyHistory = "lbl_empty_history"
	TKeyLblCaregiver    = "lbl_caregiver_note"

	TKeyLblLanguage   = "lbl_language"
	TKeyHelpLanguage  = "help_language"
	TKeyLblGeneral    = "lbl_general"
	TKeyLblPort       = "lbl_server_port"
	TKeyHelpPort      = "help_port"
	TKeyLblFeed       = "lbl_feed_enabled"
	TKeyLblFeedHelp   = "help_feed"
	TKeyLblPlan       = "lbl_plan_source"
	TKeyModeWeb       = "mode_web"
	TKeyModeLocal     = "mode_local"
	TKeyLblURL        = "lbl_url"
	TKeyLblUser       = "lbl_user"
	TKeyLblPass       = "lbl_pass"
	TKeyBtnBrowse     = "btn_browse"
	TKeyBtnImport     = "btn_import"
	TKeyBtnSave       = "btn_save"
	TKeyBtnCancel     = "btn_cancel"
	TKeyLblFooter     = "lbl_footer"
	TKeyErrPortReq    = "err_port_required"
	TKeyErrPortNum    = "err_port_number"
	TKeyErrPortRange  = "err_port_range"
	TKeyWeekdayPrefix = "day_" // day_Mon ... day_Sun
)

// -----------------------------------------------------------------------------
// Default Values
// -----------------------------------------------------------------------------

const (
	PlanModeWeb     = "web"
	PlanModeLocal   = "local"
	DefaultPort     = "18081"
	DefaultLanguage = "en"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go MedReminder//Schedule//EN"
	ICalCalName   = "Medications"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gomedreminder"
	ICalTriggerAt = "PT0M"
	ICalDailyRule = "FREQ=DAILY"
	ICalWeekRule  = "FREQ=WEEKLY;BYDAY="
	ICalByDay     = "BYDAY="

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRRule       = "RRULE"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardVersion = "4.0"

	DefaultICalRefresh = 1 * time.Hour

	// ICalFloatingFormat renders a local wall-clock DATE-TIME without a zone.
	ICalFloatingFormat = "20060102T150405"

	FormatUID = "%s@%s"

	// StubVCalendar is the minimal valid iCalendar object used when no medication is active.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// ICalWeekdays maps WeekdayTags to RFC 5545 BYDAY codes.
var ICalWeekdays = map[string]string{
	"Mon": "MO", "Tue": "TU", "Wed": "WE", "Thu": "TH", "Fri": "FR", "Sat": "SA", "Sun": "SU",
}

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	DateFormatBirth = "2006-01-02"
	DateFormatVCard = "20060102"
	DateFormatDay   = "2006-01-02"

	MinPort = 1
	MaxPort = 65535

	ExtICS = ".ics"
	ExtJPG = ".jpg"
	ExtPNG = ".png"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB, plans are small text files
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteCalendar       = "/calendar.ics"
	RouteProfile        = "/profile.vcf"
	RouteHistory        = "/history.json"
	RouteMetrics        = "/metrics"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeVCard           = "text/vcard; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty    = "configuration error: local path is empty"
	ErrWebURLEmpty       = "configuration error: web URL is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrModeUnsupport     = "configuration error: unsupported source mode"
	ErrStoreUnsupport    = "configuration error: unsupported store backend"
	ErrTickInterval      = "configuration error: tick interval must be between 1ms and 30s"
	ErrEnvConfig         = "failed to process environment variables"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrPlanParse         = "failed to parse plan calendar"
	ErrPlanRequest       = "failed to build plan request"
	ErrPlanNetwork       = "plan server unreachable"
	ErrPlanDenied        = "plan server refused the credentials"
	ErrPlanUnavailable   = "plan server returned an error"
	ErrPlanTooLarge      = "plan exceeds the size limit"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrVCardEncode       = "failed to encode vCard data"
	ErrClockFormat       = "time must be HH:mm (24-hour)"
	ErrNameRequired      = "medication name is required"
	ErrDosageRequired    = "medication dosage is required"
	ErrStatusInvalid     = "acknowledgment status must be taken or skipped"
	ErrHistoryID         = "failed to generate history id"
	ErrProfileIncomplete = "profile name and disease are required"
	ErrMedNotFound       = "medication not found"
	ErrNoActiveAlarm     = "no alarm in progress"
	ErrAlreadyAcked      = "alarm already acknowledged"
	ErrAudioUnavailable  = "audio output unavailable"
	ErrRecordMissing     = "record not found"
	ErrRecordDecode      = "failed to decode stored record"
	ErrRecordEncode      = "failed to encode record"
	ErrRecordWrite       = "failed to write record"
	ErrSQLiteOpen        = "failed to open sqlite store"
	ErrPhotoDecode       = "failed to decode photo"
	ErrPhotoEncode       = "failed to encode photo"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrConfigDir         = "could not determine user config dir"
	ErrCreateDir         = "could not create app directory"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrLocNotInit        = "localizer not initialized"
	ErrCronSpec          = "invalid summary schedule"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackAnnounce   = "Time to take %s, %s"
	FallbackSpeechLang = "en-US"
	FallbackName       = "Patient"

	TitleStartupError = "Startup Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgAppStarting     = "Starting application"
	MsgNoDotEnv        = "No .env file found, using process environment"
	MsgSchedulerStart  = "Scheduler started"
	MsgSchedulerStop   = "Scheduler stopping due to context cancellation"
	MsgTrigger         = "Medication due, raising alarm"
	MsgAlarmReplaced   = "Alarm replaced by a later trigger before acknowledgment"
	MsgAlarmAcked      = "Alarm acknowledged"
	MsgSpeechFailed    = "Announcement failed"
	MsgToneFailed      = "Tone playback failed"
	MsgToneDisabled    = "Tone disabled for this alarm"
	MsgRecordDefaulted = "Stored record unreadable, using default"
	MsgRecordSkipped   = "Skipping invalid stored medication"
	MsgRecordSaved     = "Record saved"
	MsgScreenChange    = "Screen changed"
	MsgEditMissing     = "Edit target no longer exists, showing dashboard"
	MsgMedCreated      = "Medication created"
	MsgMedUpdated      = "Medication updated"
	MsgMedDeleted      = "Medication deleted"
	MsgMedToggled      = "Medication toggled"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Feed cache updated"
	MsgFeedFailed      = "Feed rebuild failed"
	MsgImportStarted   = "Plan import started"
	MsgImportDone      = "Plan import finished"
	MsgImportFailed    = "Plan import failed"
	MsgPlanDownload    = "Plan download started"
	MsgPlanRejected    = "Plan server rejected the request"
	MsgSkippedEvent    = "Skipping plan event"
	MsgSummarySent     = "Daily summary sent"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgPassSaveFail    = "Failed to save credentials to keyring"
	MsgLogWarning      = "Warning: %s at %s: %v\n"

	PlaceholderURL       = "https://..."
	PlaceholderBirthDate = "YYYY-MM-DD"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyRecord    = "record"
	LogKeyBackend   = "backend"
	LogKeyMinute    = "minute"
	LogKeyMedID     = "medication_id"
	LogKeyMedName   = "medication_name"
	LogKeyAckStatus = "ack_status"
	LogKeyScreen    = "screen"
	LogKeyFrom      = "from"
	LogKeyCount     = "count"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"
	LogKeyValue     = "value"
	LogKeyTaken     = "taken"
	LogKeySkipped   = "skipped"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild     = "build"
	LogKeyApp       = "app"
	LogKeyVersion   = "version"
	LogKeyCommit    = "commit"
	LogKeyBuildDate = "date"
	LogKeyGoVer     = "go_version"
	LogKeyEnv       = "env"
	LogKeyOS        = "os"
	LogKeyArch      = "arch"
	LogKeyPID       = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI         = "ui"
	CompUISet      = "ui_settings"
	CompEngine     = "engine"
	CompScheduler  = "scheduler"
	CompAlarm      = "alarm"
	CompController = "controller"
	CompStore      = "store"
	CompServer     = "server"
	CompFetcher    = "fetcher"
	CompMain       = "main"
	CompI18n       = "i18n"
	CompConfig     = "config"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace       = "medreminder"
	MetricAlarmsTriggered  = "alarms_triggered_total"
	MetricAcknowledgments  = "acknowledgments_total"
	MetricStoreWriteErrors = "store_write_failures_total"
	MetricAlertFailures    = "alert_failures_total"
	MetricLabelStatus      = "status"
	MetricLabelRecord      = "record"
	MetricLabelChannel     = "channel"
	ChannelSpeech          = "speech"
	ChannelTone            = "tone"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
	AvatarSize          = 64
	AlarmTitleSize      = 32
)

// -----------------------------------------------------------------------------
// UI Resources & Messages
// -----------------------------------------------------------------------------

const (
	IconFile      = "Icon.png"
	FeedURLFormat = "http://" + LocalhostBindAddr + ":%s" + RouteCalendar

	MsgSettingsOpen  = "Opening settings window"
	MsgSettingsFocus = "Settings window already open, requesting focus"
	MsgSettingsSaved = "Saving preferences"
	MsgAlarmShown    = "Alarm screen shown"
	MsgFeedRestart   = "Caregiver feed restarting"
	MsgFeedDisabled  = "Caregiver feed disabled"
	MsgPhotoFailed   = "Profile photo could not be processed"
	MsgActionFailed  = "User action rejected"
)
