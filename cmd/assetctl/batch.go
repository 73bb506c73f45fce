package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Manage salvage batches",
}

var batchVendorFlag string

var batchCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty salvage batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"pickupVendor": batchVendorFlag}
		var result apiBatch
		if err := newClient().postJSON("/batches", body, &result); err != nil {
			return err
		}
		fmt.Printf("batch %s created (%s)\n", result.BatchCode, result.ID)
		return nil
	},
}

var batchAddCmd = &cobra.Command{
	Use:   "add BATCH_ID TAG",
	Short: "Add an asset to a salvage batch",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"assetTag": args[1]}
		if err := newClient().postJSON("/batches/"+url.PathEscape(args[0])+"/assets", body, nil); err != nil {
			return err
		}
		fmt.Printf("added %s to batch %s\n", args[1], args[0])
		return nil
	},
}

var (
	batchManifestNumberFlag string
	batchPickedUpAtFlag     string
)

var batchFinalizeCmd = &cobra.Command{
	Use:   "finalize BATCH_ID",
	Short: "Seal a batch and salvage every member asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"manifestNumber": batchManifestNumberFlag}
		if batchPickedUpAtFlag != "" {
			body["pickedUpAt"] = batchPickedUpAtFlag
		}
		var result apiBatch
		if err := newClient().postJSON("/batches/"+url.PathEscape(args[0])+"/finalize", body, &result); err != nil {
			return err
		}
		fmt.Printf("batch %s finalized with manifest %s\n", result.BatchCode, result.PickupManifestNumber)
		return nil
	},
}

var batchManifestCmd = &cobra.Command{
	Use:   "manifest BATCH_ID",
	Short: "Print the disposal manifest for a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result map[string]any
		if err := newClient().getJSON("/batches/"+url.PathEscape(args[0])+"/manifest", &result); err != nil {
			return err
		}
		if outputFmt == "table" {
			outputFmt = "json"
		}
		return printOutput(result)
	},
}

var (
	reportFromFlag string
	reportToFlag   string
)

var batchReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize salvage batch activity over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if reportFromFlag != "" {
			query.Set("from", reportFromFlag)
		}
		if reportToFlag != "" {
			query.Set("to", reportToFlag)
		}
		var result map[string]any
		if err := newClient().getJSON("/reports/salvage?"+query.Encode(), &result); err != nil {
			return err
		}
		if outputFmt == "table" {
			outputFmt = "json"
		}
		return printOutput(result)
	},
}

func init() {
	batchCreateCmd.Flags().StringVar(&batchVendorFlag, "vendor", "", "Pickup vendor (required)")
	_ = batchCreateCmd.MarkFlagRequired("vendor")

	batchFinalizeCmd.Flags().StringVar(&batchManifestNumberFlag, "manifest", "", "Vendor manifest number (required)")
	batchFinalizeCmd.Flags().StringVar(&batchPickedUpAtFlag, "picked-up-at", "", "Pickup time (RFC3339, defaults to now)")
	_ = batchFinalizeCmd.MarkFlagRequired("manifest")

	batchCmd.AddCommand(batchCreateCmd)
	batchCmd.AddCommand(batchAddCmd)
	batchCmd.AddCommand(batchFinalizeCmd)
	batchCmd.AddCommand(batchManifestCmd)
	batchCmd.AddCommand(batchReportCmd)
}
