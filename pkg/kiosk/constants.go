package kiosk

const DefaultRepository = "https://github.com/humans-for-housing/humans_for_housing_video_player.git"
const DefaultInstallDirName = "humans_for_housing_video_player"

// Playback application.

const PlayerModule = "humans_for_housing_video_player.main"
const DefaultDisplay = ":0"
const XAuthorityFileName = ".Xauthority"

// Service.

const DefaultServiceName = "video-player.service"
const DefaultServiceTemplate = "video-player.service"
const DefaultUnitDir = "/etc/systemd/system"
const DefaultInputGroup = "input"

// User-level package manager.

const UVInstallScriptURL = "https://astral.sh/uv/install.sh"
const UVBinaryName = "uv"
const UVRelativeBinDir = ".local/bin"
