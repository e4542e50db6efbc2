package server

const (
	roleAdmin  = "admin"
	roleBeamer = "beamer"
	rolePlayer = "player"
)

const (
	roomAdmin   = "admin"
	roomBeamer  = "beamer"
	roomPlayers = "players"
)

// Client-to-server command names. The full set of legal commands is
// enumerated here and dispatched from a single switch.
const (
	cmdAdminAuth           = "admin:auth"
	cmdAdminStartGame      = "admin:start_game"
	cmdAdminNextImage      = "admin:next_image"
	cmdAdminRevealImage    = "admin:reveal_image"
	cmdAdminEndGame        = "admin:end_game"
	cmdAdminReset          = "admin:reset"
	cmdAdminSpotlight      = "admin:spotlight"
	cmdAdminGetSettings    = "admin:get_settings"
	cmdAdminUpdateSettings = "admin:update_settings"
	cmdAdminPurgePlayer    = "admin:purge_player"
	cmdPlayerJoin          = "player:join"
	cmdPlayerReconnect     = "player:reconnect"
	cmdPlayerLockAnswer    = "player:lock_answer"
	cmdPlayerLeave         = "player:leave"
	cmdPing                = "ping"
)

// Server-to-client event names.
const (
	evtAuthRequired  = "admin:auth_required"
	evtAdminState    = "admin:state"
	evtAnswerLocked  = "admin:answer_locked"
	evtSessionCount  = "admin:session_count"
	evtBeamerStatus  = "admin:beamer_status"
	evtWarning       = "admin:warning"
	evtPhaseChange   = "game:phase_change"
	evtImageRevealed = "game:image_revealed"
	evtLeaderboard   = "game:leaderboard_update"
	evtRoster        = "game:roster_update"
	evtSpotlight     = "beamer:spotlight"
	evtPong          = "pong"
)

const (
	resetLevelSoft    = "soft"
	resetLevelHard    = "hard"
	resetLevelFactory = "factory"
)
