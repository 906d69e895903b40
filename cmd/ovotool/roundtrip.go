package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ovokit/pkg/ovo"
)

func newRoundtripCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <in.ovo> <out.ovo>",
		Short: "Decode a file and encode it again chunk for chunk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := ovo.Read(bytes.NewReader(in))
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err := f.Write(&out); err != nil {
				return err
			}
			if err := os.WriteFile(args[1], out.Bytes(), 0644); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "%s -> %s (%d chunks, %d bytes)", args[0], args[1], len(f.Records), out.Len())
			if bytes.Equal(in, out.Bytes()) {
				printField(w, "Result", "byte-identical")
			} else {
				printField(w, "Result", styleWarning.Render(fmt.Sprintf("differs (%d bytes in)", len(in))))
			}
			return nil
		},
	}
}
