package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage individual assets",
}

var assetGetCmd = &cobra.Command{
	Use:   "get TAG",
	Short: "Show one asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result map[string]any
		if err := newClient().getJSON("/assets/"+url.PathEscape(args[0]), &result); err != nil {
			return err
		}
		if outputFmt == "table" {
			outputFmt = "json"
		}
		return printOutput(result)
	},
}

var (
	listStateFlag string
	listSiteFlag  string
)

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets by lifecycle state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listStateFlag == "" {
			return fmt.Errorf("--state is required")
		}
		query := url.Values{"state": {listStateFlag}}
		if listSiteFlag != "" {
			query.Set("site", listSiteFlag)
		}
		var result apiAssetList
		if err := newClient().getJSON("/assets?"+query.Encode(), &result); err != nil {
			return err
		}
		if outputFmt != "table" {
			return printOutput(result)
		}
		rows := make([][]string, 0, len(result.Assets))
		for _, a := range result.Assets {
			rows = append(rows, []string{a.AssetTag, a.LifecycleState, a.CurrentSite, a.Location, a.CurrentDesk, a.DeployedToUser})
		}
		printTable([]string{"tag", "state", "site", "location", "desk", "user"}, rows)
		return nil
	},
}

var assetEventsCmd = &cobra.Command{
	Use:   "events TAG",
	Short: "Show the lifecycle event history of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result apiEventList
		if err := newClient().getJSON("/assets/"+url.PathEscape(args[0])+"/events", &result); err != nil {
			return err
		}
		if outputFmt != "table" {
			return printOutput(result)
		}
		rows := make([][]string, 0, len(result.Events))
		for _, e := range result.Events {
			rows = append(rows, []string{e.CreatedAt, e.EventType, e.CreatedBy})
		}
		printTable([]string{"time", "event", "actor"}, rows)
		return nil
	},
}

var (
	deployDeskFlag  string
	deployUserFlag  string
	deployEmailFlag string
)

var assetDeployCmd = &cobra.Command{
	Use:   "deploy TAG",
	Short: "Deploy an asset to a desk and user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{
			"desk":      deployDeskFlag,
			"userName":  deployUserFlag,
			"userEmail": deployEmailFlag,
		}
		var result map[string]any
		if err := newClient().postJSON("/assets/"+url.PathEscape(args[0])+"/deploy", body, &result); err != nil {
			return err
		}
		fmt.Printf("deployed %s to %s\n", args[0], deployDeskFlag)
		return nil
	},
}

var assetTransitionCmd = &cobra.Command{
	Use:   "transition TAG STATE",
	Short: "Transition an asset to a new lifecycle state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result map[string]any
		path := "/assets/" + url.PathEscape(args[0]) + "/transitions/" + url.PathEscape(args[1])
		if err := newClient().postJSON(path, map[string]any{}, &result); err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", args[0], args[1])
		return nil
	},
}

var redeployDeskFlag string

var assetRedeployCmd = &cobra.Command{
	Use:   "redeploy TAG",
	Short: "Redeploy an asset to a new desk, or back to storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"newDesk": redeployDeskFlag}
		var result map[string]any
		if err := newClient().postJSON("/assets/"+url.PathEscape(args[0])+"/redeploy", body, &result); err != nil {
			return err
		}
		if redeployDeskFlag == "" {
			fmt.Printf("%s returned to storage\n", args[0])
		} else {
			fmt.Printf("%s redeployed to %s\n", args[0], redeployDeskFlag)
		}
		return nil
	},
}

var (
	replaceDeskFlag     string
	replaceUserFlag     string
	replaceEmailFlag    string
	replaceRedeployFlag bool
)

var assetReplaceCmd = &cobra.Command{
	Use:   "replace OLD_TAG NEW_TAG",
	Short: "Deploy a replacement asset and retire the old one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sendOldToSalvage := !replaceRedeployFlag
		body := map[string]any{
			"newAssetTag":      args[1],
			"desk":             replaceDeskFlag,
			"userName":         replaceUserFlag,
			"userEmail":        replaceEmailFlag,
			"sendOldToSalvage": sendOldToSalvage,
		}
		if err := newClient().postJSON("/assets/"+url.PathEscape(args[0])+"/replace", body, nil); err != nil {
			return err
		}
		fmt.Printf("replaced %s with %s\n", args[0], args[1])
		return nil
	},
}

var assetSetCmd = &cobra.Command{
	Use:   "set TAG FIELD=VALUE [FIELD=VALUE...]",
	Short: "Edit asset record fields (serialNumber, notes, ipAddress, ...)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := make(map[string]string, len(args)-1)
		for _, pair := range args[1:] {
			name, value, ok := strings.Cut(pair, "=")
			if !ok || name == "" {
				return fmt.Errorf("invalid field assignment %q (want FIELD=VALUE)", pair)
			}
			fields[name] = value
		}
		if err := newClient().patchJSON("/assets/"+url.PathEscape(args[0]), fields, nil); err != nil {
			return err
		}
		fmt.Printf("updated %d field(s) on %s\n", len(fields), args[0])
		return nil
	},
}

func init() {
	assetListCmd.Flags().StringVar(&listStateFlag, "state", "", "Lifecycle state to list")
	assetListCmd.Flags().StringVar(&listSiteFlag, "site", "", "Filter by current site")

	assetDeployCmd.Flags().StringVar(&deployDeskFlag, "desk", "", "Destination desk (required)")
	assetDeployCmd.Flags().StringVar(&deployUserFlag, "user", "", "User name")
	assetDeployCmd.Flags().StringVar(&deployEmailFlag, "email", "", "User email")
	_ = assetDeployCmd.MarkFlagRequired("desk")

	assetRedeployCmd.Flags().StringVar(&redeployDeskFlag, "desk", "", "New desk (empty returns the asset to storage)")

	assetReplaceCmd.Flags().StringVar(&replaceDeskFlag, "desk", "", "Destination desk (required)")
	assetReplaceCmd.Flags().StringVar(&replaceUserFlag, "user", "", "User name")
	assetReplaceCmd.Flags().StringVar(&replaceEmailFlag, "email", "", "User email")
	assetReplaceCmd.Flags().BoolVar(&replaceRedeployFlag, "redeploy-old", false, "Send the old asset to RedeployPending instead of SalvagePending")
	_ = assetReplaceCmd.MarkFlagRequired("desk")

	assetCmd.AddCommand(assetGetCmd)
	assetCmd.AddCommand(assetListCmd)
	assetCmd.AddCommand(assetEventsCmd)
	assetCmd.AddCommand(assetDeployCmd)
	assetCmd.AddCommand(assetTransitionCmd)
	assetCmd.AddCommand(assetRedeployCmd)
	assetCmd.AddCommand(assetReplaceCmd)
	assetCmd.AddCommand(assetSetCmd)
}
