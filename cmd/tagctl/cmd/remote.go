package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/proto"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/rpc"
)

var (
	remoteAddr    string
	remoteTimeout time.Duration
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Call a running tag server over RPC",
}

var remoteCategorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize tags on a running server",
	Args:  cobra.NoArgs,
	RunE:  runRemoteCategorize,
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "localhost:5001", "RPC address")
	remoteCmd.PersistentFlags().DurationVar(&remoteTimeout, "timeout", 5*time.Second, "call timeout")

	remoteCategorizeCmd.Flags().StringVar(&tagsArg, "tags", "", "comma-separated tags")
	remoteCategorizeCmd.Flags().BoolVar(&dedup, "dedup", false, "drop repeated tags")
	remoteCategorizeCmd.Flags().StringVar(&defaultCategory, "default-category", "", "bucket for unknown tags (server default when empty)")
	remoteCategorizeCmd.MarkFlagRequired("tags")

	remoteCmd.AddCommand(remoteCategorizeCmd)
}

func runRemoteCategorize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	client, err := rpc.Dial(ctx, remoteAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	var resp proto.CategorizeResponse
	if err := client.Call(ctx, proto.MethodCategorize, proto.CategorizeRequest{
		Tags:            tagsArg,
		Deduplicate:     dedup,
		DefaultCategory: defaultCategory,
	}, &resp); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp.Buckets)
}
