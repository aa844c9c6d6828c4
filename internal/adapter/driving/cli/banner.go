package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/aws-cost-sentinel-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
   ____          _     ____             _   _            _ 
  / ___|___  ___| |_  / ___|  ___ _ __ | |_(_)_ __   ___| |
 | |   / _ \/ __| __| \___ \ / _ \ '_ \| __| | '_ \ / _ \ |
 | |__| (_) \__ \ |_   ___) |  __/ | | | |_| | | | |  __/ |
  \____\___/|___/\__| |____/ \___|_| |_|\__|_|_| |_|\___|_|
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))
	fmt.Println(blue(fmt.Sprintf("AWS Cost Sentinel (v%s)", version.FormatVersion())))
}
