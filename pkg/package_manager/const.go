package packagemanager

const BuildEssentialPackage = "build-essential"
const CurlPackage = "curl"
const GitPackage = "git"
const PythonDevPackage = "python3-dev"
const PythonVenvPackage = "python3-venv"
const VLCPackage = "vlc"

// KioskPackages are installed on every kiosk.
var KioskPackages = []string{
	GitPackage,
	CurlPackage,
	VLCPackage,
	PythonVenvPackage,
	PythonDevPackage,
	BuildEssentialPackage,
}
