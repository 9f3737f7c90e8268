package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marguberk/findmypet"
)

func petsCreateCmd() *cobra.Command {
	var (
		title, description, petType, status string
		address, date, lat, lng, imagePath  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new listing",
		Long: `Post a new missing/found pet listing.

Title, description, last-seen address and last-seen date are required.
Coordinates are optional and validated independently: a bad latitude does
not stop a valid longitude from being sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadImage(imagePath)
			if err != nil {
				return err
			}
			listing, err := client.Pets.Create(cmd.Context(), findmypet.CreateListingInput{
				Title:           title,
				Description:     description,
				PetType:         findmypet.PetType(petType),
				Status:          findmypet.ListingStatus(status),
				LastSeenAddress: address,
				LastSeenDate:    date,
				Latitude:        lat,
				Longitude:       lng,
				Image:           image,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Listing %d created\n", listing.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "listing title")
	cmd.Flags().StringVar(&description, "description", "", "listing description")
	cmd.Flags().StringVar(&petType, "type", "", "pet type (cat, dog, bird, other; default cat)")
	cmd.Flags().StringVar(&status, "status", "", "listing status (missing, found; default missing)")
	cmd.Flags().StringVar(&address, "address", "", "last seen address")
	cmd.Flags().StringVar(&date, "date", "", "last seen date (e.g. 2026-08-30)")
	cmd.Flags().StringVar(&lat, "lat", "", "last seen latitude")
	cmd.Flags().StringVar(&lng, "lng", "", "last seen longitude")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to a photo to attach")
	return cmd
}

func petsUpdateCmd() *cobra.Command {
	var (
		title, description, petType, status string
		address, date, lat, lng, imagePath  string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an existing listing",
		Long: `Update a listing you own. Only the flags you pass are sent; everything
else is left unchanged on the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseListingID(args[0])
			if err != nil {
				return err
			}
			image, err := loadImage(imagePath)
			if err != nil {
				return err
			}

			in := findmypet.UpdateListingInput{
				Latitude:  lat,
				Longitude: lng,
				Image:     image,
			}
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if cmd.Flags().Changed("type") {
				t := findmypet.PetType(petType)
				in.PetType = &t
			}
			if cmd.Flags().Changed("status") {
				st := findmypet.ListingStatus(status)
				in.Status = &st
			}
			if cmd.Flags().Changed("address") {
				in.LastSeenAddress = &address
			}
			if cmd.Flags().Changed("date") {
				in.LastSeenDate = &date
			}

			listing, err := client.Pets.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Printf("Listing %d updated\n", listing.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "listing title")
	cmd.Flags().StringVar(&description, "description", "", "listing description")
	cmd.Flags().StringVar(&petType, "type", "", "pet type (cat, dog, bird, other)")
	cmd.Flags().StringVar(&status, "status", "", "listing status (missing, found)")
	cmd.Flags().StringVar(&address, "address", "", "last seen address")
	cmd.Flags().StringVar(&date, "date", "", "last seen date")
	cmd.Flags().StringVar(&lat, "lat", "", "last seen latitude")
	cmd.Flags().StringVar(&lng, "lng", "", "last seen longitude")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to a photo to attach")
	return cmd
}

func loadImage(path string) (*findmypet.ImageAttachment, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &findmypet.ImageAttachment{
		Filename: filepath.Base(path),
		Data:     data,
	}, nil
}
