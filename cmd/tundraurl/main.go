// Command tundraurl inspects and builds tundra:// login URLs.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
)

type classification struct {
	Action string                         `json:"action"`
	Params *loginurl.ConnectionParameters `json:"params,omitempty"`
	Title  string                         `json:"title,omitempty"`
	Reason string                         `json:"reason,omitempty"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tundraurl",
		Short:        "Classify and build tundra:// login URLs",
		SilenceUsage: true,
	}
	root.AddCommand(newClassifyCmd(), newFormatCmd(), newNormalizeCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	var showPassword bool
	cmd := &cobra.Command{
		Use:   "classify <url>",
		Short: "Report whether a URL continues, logs in or is rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := loginurl.Classify(args[0])
			out := classification{Action: action.Kind.String()}
			switch action.Kind {
			case loginurl.LoginRequest:
				params := action.Params
				if !showPassword {
					params.Password = ""
				}
				out.Params = &params
				out.Title = loginurl.WorldTitle(args[0])
			case loginurl.Rejected:
				out.Reason = action.Reason.Error()
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&showPassword, "show-password", false, "include the password in the output")
	return cmd
}

func newFormatCmd() *cobra.Command {
	var p loginurl.ConnectionParameters
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Build a canonical login URL. The password is never included.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !p.Valid() {
				return fmt.Errorf("--address and --username are required")
			}
			if p.Protocol != loginurl.ProtocolTCP && p.Protocol != loginurl.ProtocolUDP {
				return fmt.Errorf("unknown protocol %q", p.Protocol)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), loginurl.Format(p))
			return err
		},
	}
	cmd.Flags().StringVar(&p.Address, "address", "", "server address")
	cmd.Flags().IntVar(&p.Port, "port", loginurl.DefaultPort, "server port")
	cmd.Flags().StringVar(&p.Username, "username", "", "login name")
	cmd.Flags().StringVar(&p.Protocol, "protocol", loginurl.ProtocolTCP, "tcp or udp")
	cmd.Flags().StringVar(&p.AvatarURL, "avatar-url", "", "avatar asset URL")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <input>",
		Short: "Show the URL the address bar would load for input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), loginurl.NormalizeInput(args[0]))
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
