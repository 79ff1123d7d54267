package assets

import (
	"fmt"

	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/chem"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/spf13/cobra"
)

// New 把内置的元素表写到 ENGINE_ASSET_PATH，部署前执行一次
func New() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:          "assets",
		Long:         "Write the structure engine asset to its static path",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := out
			if path == "" {
				path = config.Global().Engine.AssetPath
			}
			if err := chem.WriteAsset(path); err != nil {
				logger.Errorf(cmd.Context(), "write engine asset path: %s err: %+v", path, err)
				return err
			}
			if _, err := chem.Load(cmd.Context(), path); err != nil {
				logger.Errorf(cmd.Context(), "verify engine asset path: %s err: %+v", path, err)
				return err
			}
			fmt.Printf("engine asset written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "target path, defaults to ENGINE_ASSET_PATH")
	return cmd
}
