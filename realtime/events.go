package realtime

// Имена событий совместимы с фронтендом Scorecraft-front.

// Server -> client pushes.
const (
	EventRegistrationStatus = "check"      // RegistrationStatus snapshot
	EventDomainData         = "domaindata" // []models.Domain snapshot
	EventDomainStat         = "domainStat" // DomainWindow
	EventDomainSelected     = "domainSelected"
	EventTeam               = "team"
	EventLeaderboard        = "leaderboard"
	EventReminder           = "admin:sendReminder"
	EventUpdates            = "eventupdates"
	EventLoadData           = "server:loadData"
	EventReceivePPT         = "client:receivePPT" // models.PresentationTemplate
)

// Client -> server intents.
const (
	IntentCheck        = "check"
	IntentDomainData   = "domaindat"
	IntentDomainStat   = "domainStat"
	IntentSelectDomain = "domainSelected"
	IntentGetData      = "client:getData"
	IntentPrevEvents   = "prevevent"
	IntentJoin         = "join"
)

// Admin intents (требуют токен с ролью admin).
const (
	IntentSetDomainTime       = "admin:setDomainTime"
	IntentOpenDomains         = "domainOpen"
	IntentCloseDomains        = "admin:closeDomains"
	IntentSendReminder        = "admin:sendReminder"
	IntentSetRegistrationCap  = "admin:setLimit"
	IntentSetRegistrationTime = "admin:setRegTime"
	IntentOpenRegistrations   = "admin:openRegistrations"
	IntentCloseRegistrations  = "admin:closeRegistrations"
)

// SelectionRejectedFull — payload события domainSelected, когда слот
// достался конкурирующей команде. Значение видит фронтенд, не менять.
const SelectionRejectedFull = "fulled"
