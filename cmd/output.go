package cmd

import (
	"fmt"
	"text/tabwriter"

	"boshladle/internal/boshlite"
	"boshladle/internal/config"
	"boshladle/internal/options"
	"boshladle/internal/ui"

	"github.com/spf13/cobra"
)

func logLaunchOpts(cmd *cobra.Command, opts *options.Options, settings config.Config) {
	image := settings.AMI
	if image == "" {
		image = "newest " + settings.ImageName
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Launching BOSH Lite %q [type=%s, subnet=%s, group=%s, key=%s, disk=%dGiB, image=%s, region=%s]\n",
		opts.Name, opts.InstanceType, opts.SubnetID, opts.SecurityGroup, opts.KeyPair, opts.DiskSize, image, settings.Region)
}

// printLaunched prints a vertical key-value table of the launched instance.
func printLaunched(cmd *cobra.Command, inst *boshlite.Instance, styled bool) {
	headline := "BOSH Lite instance launched!"
	state := inst.State
	if styled {
		headline = ui.SuccessText.Render(headline)
		state = ui.StateStyle(state).Render(state)
	}
	fmt.Fprintln(cmd.OutOrStdout(), headline)
	fmt.Fprintln(cmd.OutOrStdout())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  ID:\t%s\n", inst.ID)
	fmt.Fprintf(w, "  Name:\t%s\n", inst.Name)
	fmt.Fprintf(w, "  State:\t%s\n", state)
	fmt.Fprintf(w, "  Image:\t%s\n", inst.ImageID)
	fmt.Fprintf(w, "  Subnet:\t%s\n", inst.SubnetID)
	if inst.PrivateIP != "" {
		fmt.Fprintf(w, "  Private IP:\t%s\n", inst.PrivateIP)
	}
	w.Flush()
}
