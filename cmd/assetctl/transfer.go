package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Manage inter-site shipment legs",
}

var (
	transferToSiteFlag   string
	transferToBinFlag    string
	transferCarrierFlag  string
	transferTrackingFlag string
)

var transferCreateCmd = &cobra.Command{
	Use:   "create TAG",
	Short: "Open a draft transfer for an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{
			"assetTag":       args[0],
			"toSite":         transferToSiteFlag,
			"toStorageBin":   transferToBinFlag,
			"carrier":        transferCarrierFlag,
			"trackingNumber": transferTrackingFlag,
		}
		var result apiTransfer
		if err := newClient().postJSON("/transfers", body, &result); err != nil {
			return err
		}
		fmt.Printf("transfer %s created: %s -> %s\n", result.ID, result.FromSite, result.ToSite)
		return nil
	},
}

var transferShipCmd = &cobra.Command{
	Use:   "ship TRANSFER_ID",
	Short: "Mark a draft transfer shipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result apiTransfer
		if err := newClient().postJSON("/transfers/"+url.PathEscape(args[0])+"/ship", nil, &result); err != nil {
			return err
		}
		fmt.Printf("transfer %s shipped (asset %s)\n", result.ID, result.AssetTag)
		return nil
	},
}

var transferReceivedByFlag string

var transferReceiveCmd = &cobra.Command{
	Use:   "receive TRANSFER_ID",
	Short: "Mark a shipped transfer received at its destination",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"receivedBy": transferReceivedByFlag}
		var result apiTransfer
		if err := newClient().postJSON("/transfers/"+url.PathEscape(args[0])+"/receive", body, &result); err != nil {
			return err
		}
		fmt.Printf("transfer %s received at %s (asset %s)\n", result.ID, result.ToSite, result.AssetTag)
		return nil
	},
}

var transferSiteFlag string

var transferPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List transfers still in Draft or Shipped",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{"pending": {"true"}}
		if transferSiteFlag != "" {
			query.Set("site", transferSiteFlag)
		}
		var result apiTransferList
		if err := newClient().getJSON("/transfers?"+query.Encode(), &result); err != nil {
			return err
		}
		if outputFmt != "table" {
			return printOutput(result)
		}
		rows := make([][]string, 0, len(result.Transfers))
		for _, t := range result.Transfers {
			rows = append(rows, []string{t.ID, t.AssetTag, t.FromSite, t.ToSite, t.State, t.TrackingNumber})
		}
		printTable([]string{"id", "asset", "from", "to", "state", "tracking"}, rows)
		return nil
	},
}

func init() {
	transferCreateCmd.Flags().StringVar(&transferToSiteFlag, "to-site", "", "Destination site (required)")
	transferCreateCmd.Flags().StringVar(&transferToBinFlag, "to-bin", "", "Destination storage bin")
	transferCreateCmd.Flags().StringVar(&transferCarrierFlag, "carrier", "", "Carrier name")
	transferCreateCmd.Flags().StringVar(&transferTrackingFlag, "tracking", "", "Tracking number")
	_ = transferCreateCmd.MarkFlagRequired("to-site")

	transferReceiveCmd.Flags().StringVar(&transferReceivedByFlag, "received-by", "", "Person who took delivery (defaults to the actor)")

	transferPendingCmd.Flags().StringVar(&transferSiteFlag, "site", "", "Filter to transfers touching this site")

	transferCmd.AddCommand(transferCreateCmd)
	transferCmd.AddCommand(transferShipCmd)
	transferCmd.AddCommand(transferReceiveCmd)
	transferCmd.AddCommand(transferPendingCmd)
}
