package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marguberk/findmypet"
)

func petsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pets",
		Short: "Browse and manage pet listings",
	}
	cmd.AddCommand(
		petsListCmd(),
		petsGetCmd(),
		petsMineCmd(),
		petsCreateCmd(),
		petsUpdateCmd(),
		petsDeleteCmd(),
	)
	return cmd
}

func petsListCmd() *cobra.Command {
	var petType, status string
	var mappable bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pet listings, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := findmypet.ListingFilter{
				PetType: findmypet.PetType(petType),
				Status:  findmypet.ListingStatus(status),
			}
			listings, err := client.Pets.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if mappable {
				listings = findmypet.FilterMappable(listings)
			}
			return printListings(listings)
		},
	}
	cmd.Flags().StringVar(&petType, "type", "", "filter by pet type (cat, dog, bird, other)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (missing, found)")
	cmd.Flags().BoolVar(&mappable, "mappable", false, "only listings with plottable coordinates")
	return cmd
}

func petsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseListingID(args[0])
			if err != nil {
				return err
			}
			listing, err := client.Pets.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printResult(listing, func() error {
				printListingDetail(listing)
				return nil
			})
		},
	}
}

func petsMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := client.Pets.ListMine(cmd.Context())
			if err != nil {
				return err
			}
			return printListings(listings)
		},
	}
}

func petsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseListingID(args[0])
			if err != nil {
				return err
			}
			if !force && !confirm(fmt.Sprintf("Delete listing %d?", id)) {
				fmt.Println("Aborted")
				return nil
			}
			if err := client.Pets.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Listing %d deleted\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func parseListingID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid listing id %q", arg)
	}
	return id, nil
}

func printListings(listings []findmypet.Listing) error {
	return printResult(listings, func() error {
		if len(listings) == 0 {
			fmt.Println("No listings found")
			return nil
		}
		w := newTable()
		printTableHeader(w, "ID", "TITLE", "TYPE", "STATUS", "LAST SEEN", "COORDS")
		for _, l := range listings {
			coords := "-"
			if findmypet.HasValidCoordinates(l) {
				coords = fmt.Sprintf("%.5f,%.5f", l.Latitude.Value, l.Longitude.Value)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				l.ID,
				truncate(l.Title, 30),
				l.PetType,
				l.Status,
				truncate(l.LastSeenAddress, 30),
				coords,
			)
		}
		return w.Flush()
	})
}

func printListingDetail(l *findmypet.Listing) {
	fmt.Printf("ID:          %d\n", l.ID)
	fmt.Printf("Title:       %s\n", l.Title)
	fmt.Printf("Type:        %s\n", l.PetType)
	fmt.Printf("Status:      %s\n", l.Status)
	fmt.Printf("Description: %s\n", l.Description)
	fmt.Printf("Last seen:   %s (%s)\n", l.LastSeenAddress, l.LastSeenDate)
	if findmypet.HasValidCoordinates(*l) {
		fmt.Printf("Coordinates: %.6f, %.6f\n", l.Latitude.Value, l.Longitude.Value)
	}
	if l.ImageURL != "" {
		fmt.Printf("Image:       %s\n", l.ImageURL)
	}
	fmt.Printf("Posted by:   user %d at %s\n", l.UserID, l.CreatedAt)
}
