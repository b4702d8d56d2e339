package utils

import (
	"encoding/json"
	"io/ioutil"

	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/logger"
)

// Action names dispatched by the participant state machine.
const (
	ActionVerifyPin      = "verify_pin"
	ActionAdminMenu      = "admin_menu"
	ActionToggleMute     = "toggle_mute"
	ActionToggleDeafMute = "toggle_deaf_mute"
	ActionLeave          = "leave_conference"
	ActionDecListen      = "dec_listen_volume"
	ActionResetListen    = "reset_listen_volume"
	ActionIncListen      = "inc_listen_volume"
	ActionDecTalk        = "dec_talk_volume"
	ActionResetTalk      = "reset_talk_volume"
	ActionIncTalk        = "inc_talk_volume"
	ActionPitchShift     = "pitch_shift"
	ActionExitAdminMenu  = "exit_admin_menu"
	ActionKickLast       = "kick_last"
	ActionToggleLock     = "toggle_lock"
	ActionToggleRecord   = "toggle_record"
)

// Menus maps DTMF digits to actions for each participant state.
type Menus struct {
	Waiting map[string]string `json:"waiting"`
	Active  map[string]string `json:"active"`
	Admin   map[string]string `json:"admin"`
}

func defaultMenus() *Menus {
	return &Menus{
		Waiting: map[string]string{
			"#": ActionVerifyPin},
		Active: map[string]string{
			"#": ActionAdminMenu,
			"1": ActionToggleMute,
			"2": ActionToggleDeafMute,
			"3": ActionLeave,
			"4": ActionDecListen,
			"5": ActionResetListen,
			"6": ActionIncListen,
			"7": ActionDecTalk,
			"8": ActionResetTalk,
			"9": ActionIncTalk,
			"0": ActionPitchShift},
		Admin: map[string]string{
			"#": ActionExitAdminMenu,
			"1": ActionKickLast,
			"2": ActionToggleLock,
			"3": ActionToggleRecord}}
}

// LoadMenus returns the digit maps, overridden by the JSON file named in
// CONF_MENU_FILE when it is set.
func LoadMenus() *Menus {
	menus := defaultMenus()
	path := Config("CONF_MENU_FILE")
	if path == "" {
		return menus
	}
	body, err := ioutil.ReadFile(path)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "could not read menu file: "+err.Error())
		return menus
	}
	var loaded Menus
	err = json.Unmarshal(body, &loaded)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "could not parse menu file: "+err.Error())
		return menus
	}
	if len(loaded.Waiting) > 0 {
		menus.Waiting = loaded.Waiting
	}
	if len(loaded.Active) > 0 {
		menus.Active = loaded.Active
	}
	if len(loaded.Admin) > 0 {
		menus.Admin = loaded.Admin
	}
	return menus
}

func (m *Menus) WaitingAction(digit string) string {
	return m.Waiting[digit]
}

func (m *Menus) ActiveAction(digit string) string {
	return m.Active[digit]
}

func (m *Menus) AdminAction(digit string) string {
	return m.Admin[digit]
}
