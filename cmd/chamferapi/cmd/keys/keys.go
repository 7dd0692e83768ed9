package keys

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
)

var (
	outFlag   string
	forceFlag bool
)

// KeysCmd groups token signing key commands.
var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the token signing key",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an RSA signing key",
	Long: `Writes a PEM encoded RSA private key. Point signing_key_path at it so issued
tokens stay valid across restarts and replicas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := auth.GeneratePrivateKeyPEM()
		if err != nil {
			return err
		}

		if outFlag == "" || outFlag == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
		if forceFlag {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}
		f, err := os.OpenFile(outFlag, flags, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", outFlag, err)
		}
		defer f.Close()

		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", outFlag, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Signing key written to %s\n", outFlag)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&outFlag, "out", "", "Output file (default stdout)")
	generateCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing file")

	KeysCmd.AddCommand(generateCmd)
}
