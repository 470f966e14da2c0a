package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/tutorauth/core"
	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign the login challenge and store a new session",
		Long: `Sign the Tutorial Platform challenge for an address and store the
resulting session, replacing any previous session of the same scheme.

With WALLETCTL_PRIVATE_KEY set the key signs directly. Otherwise the challenge
is printed and walletctl waits for the signature produced by an external
wallet; an empty answer or Ctrl-C cancels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			provider, keyAddress, err := a.provider()
			if err != nil {
				return err
			}
			if address == "" {
				address = keyAddress
			}
			if address == "" {
				return errors.New("--address is required without WALLETCTL_PRIVATE_KEY")
			}

			session, err := a.client.Login(ctx, provider, address)
			if err != nil {
				var authErr *core.AuthenticationError
				if errors.As(err, &authErr) && authErr.Rejected() {
					return errors.New("login cancelled")
				}
				return err
			}

			id, err := a.api.Establish(ctx, session)
			if err != nil {
				a.logger.Warn().Err(err).Msg("server did not accept the session")
				fmt.Printf("Signed in locally as %s (server unreachable or rejected the session)\n", session.Address)
				return nil
			}

			fmt.Printf("Signed in as %s (%s) until %s\n", id.Address, id.Scheme, session.Expiry().Format(time.RFC1123))
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "wallet address to sign in with")

	return cmd
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session and whether the server accepts it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := a.client.Session(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Address: %s\n", session.Address)
			fmt.Printf("Scheme:  %s\n", a.scheme.Name)
			fmt.Printf("Expires: %s\n", session.Expiry().Format(time.RFC1123))

			id, err := a.api.Me(ctx, session)
			if err != nil {
				return err
			}
			fmt.Printf("Server:  accepted as %s\n", id.Address)
			return nil
		},
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := a.client.Logout(ctx); err != nil {
				return err
			}
			if err := a.api.Logout(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("server logout failed")
			}

			fmt.Println("Logged out")
			return nil
		},
	}
}

func courseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Manage your courses",
	}

	var mine bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var owner string
			if mine {
				session, err := a.client.Session(ctx)
				if err != nil {
					return err
				}
				owner = session.Address
			}

			courses, err := a.api.ListCourses(ctx, owner)
			if err != nil {
				return err
			}
			for _, c := range courses {
				fmt.Printf("%s  %-40s  %s\n", c.ID, c.Title, c.Owner)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&mine, "mine", false, "only courses owned by the signed-in wallet")

	var in core.CourseInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a course owned by the signed-in wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := a.client.Session(ctx)
			if err != nil {
				return err
			}
			course, err := a.api.CreateCourse(ctx, session, in)
			if err != nil {
				return err
			}
			fmt.Printf("Created course %s\n", course.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "course title")
	create.Flags().StringVar(&in.Description, "description", "", "course description")
	_ = create.MarkFlagRequired("title")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your courses and its lessons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := a.client.Session(ctx)
			if err != nil {
				return err
			}
			if err := a.api.DeleteCourse(ctx, session, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted course %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, remove)
	return cmd
}

func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the profile of the signed-in wallet",
	}

	var in core.ProfileInput
	set := &cobra.Command{
		Use:   "set",
		Short: "Create or replace your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := a.client.Session(ctx)
			if err != nil {
				return err
			}
			profile, err := a.api.SaveProfile(ctx, session, in)
			if err != nil {
				return err
			}
			fmt.Printf("Saved profile for %s\n", profile.Address)
			return nil
		},
	}
	set.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	set.Flags().StringVar(&in.Bio, "bio", "", "short biography")

	remove := &cobra.Command{
		Use:   "delete",
		Short: "Delete your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := a.client.Session(ctx)
			if err != nil {
				return err
			}
			if err := a.api.DeleteProfile(ctx, session); err != nil {
				return err
			}
			fmt.Println("Deleted profile")
			return nil
		},
	}

	cmd.AddCommand(set, remove)
	return cmd
}
