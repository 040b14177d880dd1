package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Chrisc1124/statpad/internal/buildinfo"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show statpad version information",
	Long:  `Display version, revision, build date, and platform information for the statpad binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		if jsonOutput {
			info := map[string]string{
				"version":   buildinfo.Version,
				"revision":  buildinfo.Revision,
				"buildDate": buildinfo.BuildDate,
				"platform":  runtime.GOOS + "/" + runtime.GOARCH,
				"go":        runtime.Version(),
			}
			output, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(output))
			return nil
		}

		fmt.Printf("statpad %s (%s, %s)\n", buildinfo.Version, buildinfo.Revision, buildinfo.BuildDate)
		fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Printf("Go: %s\n", runtime.Version())
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
