package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"mibwalk/internal/mib"
)

var systemCapabilities bool

func init() {
	cmd := newSystemCmd()
	cmd.Flags().BoolVar(&systemCapabilities, "capabilities", false, "Also list sysORTable entries")
	rootCmd.AddCommand(cmd)
}

func newSystemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "system <target>",
		Short: "Show the MIB-2 system group of an agent",
		Long: `The system command walks the system group and decodes it.

Example:
  mibwalk system 192.0.2.10 --community private
  mibwalk system core-switch --capabilities`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystem(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

type systemView struct {
	Name         string           `json:"name"`
	Descr        string           `json:"descr"`
	Contact      string           `json:"contact,omitempty"`
	Location     string           `json:"location,omitempty"`
	ObjectID     string           `json:"object_id"`
	Vendor       string           `json:"vendor"`
	Uptime       time.Duration    `json:"uptime"`
	Services     int32            `json:"services,omitempty"`
	Capabilities []capabilityView `json:"capabilities,omitempty"`
}

type capabilityView struct {
	Index uint32 `json:"index"`
	ID    string `json:"id"`
	Descr string `json:"descr"`
}

func runSystem(ctx context.Context, w io.Writer, target string) error {
	dev, closeDev, err := openDevice(ctx, target)
	if err != nil {
		return err
	}
	defer closeDev()

	sys, err := mib.SystemFrom(ctx, dev)
	if err != nil {
		return err
	}

	view := systemView{
		Name:     sys.Name,
		Descr:    sys.Descr,
		Contact:  sys.Contact,
		Location: sys.Location,
		ObjectID: sys.ObjectID.String(),
		Vendor:   describe(dev.Tree(), sys.ObjectID),
		Uptime:   sys.Uptime(),
		Services: sys.Services,
	}

	if systemCapabilities {
		caps, err := mib.CapabilitiesFrom(ctx, dev)
		if err != nil {
			return err
		}
		for idx, c := range caps.All() {
			view.Capabilities = append(view.Capabilities, capabilityView{
				Index: idx,
				ID:    describe(dev.Tree(), c.ID),
				Descr: c.Descr,
			})
		}
	}

	if jsonOut {
		return printJSON(w, view)
	}

	fmt.Fprintf(w, "Name:      %s\n", view.Name)
	fmt.Fprintf(w, "Descr:     %s\n", view.Descr)
	fmt.Fprintf(w, "ObjectID:  %s (%s)\n", view.ObjectID, view.Vendor)
	fmt.Fprintf(w, "Uptime:    %s\n", view.Uptime)
	if view.Contact != "" {
		fmt.Fprintf(w, "Contact:   %s\n", view.Contact)
	}
	if view.Location != "" {
		fmt.Fprintf(w, "Location:  %s\n", view.Location)
	}
	for _, c := range view.Capabilities {
		fmt.Fprintf(w, "  [%d] %s  %s\n", c.Index, c.ID, c.Descr)
	}
	return nil
}
