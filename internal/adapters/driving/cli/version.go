package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionJSON bool

// buildInfo is what `docchat version` reports.
type buildInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision,omitempty"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{skipBootstrap: ""},
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := currentBuild()
		if versionJSON {
			return printJSON(cmd, info)
		}
		cmd.Printf("docchat version %s\n", info.Version)
		if info.Revision != "" {
			cmd.Printf("revision %s\n", info.Revision)
		}
		cmd.Printf("%s %s\n", info.Go, info.Platform)
		return nil
	},
}

func currentBuild() buildInfo {
	info := buildInfo{
		Version:  version,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
			}
		}
	}
	return info
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(versionCmd)
}
