package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireboard-server/internal/app"
	"github.com/vovakirdan/wireboard-server/internal/auth"
	"github.com/vovakirdan/wireboard-server/internal/store/sqlite"
)

// withStore opens the configured database for an admin command.
func withStore(opts *rootOptions, fn func(st *sqlite.SQLiteStore, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig(opts)
		if err != nil {
			return err
		}
		st, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		return fn(st, cmd)
	}
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var avatar string
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user and print its id",
		Args:  cobra.ExactArgs(1),
	}
	create.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	create.RunE = func(cmd *cobra.Command, args []string) error {
		return withStore(opts, func(st *sqlite.SQLiteStore, cmd *cobra.Command) error {
			user, err := st.CreateUser(cmd.Context(), args[0], avatar)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.ID)
			return nil
		})(cmd, args)
	}

	userCmd.AddCommand(create)
	return userCmd
}

func newRoomCmd(opts *rootOptions) *cobra.Command {
	roomCmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms and their participants",
	}

	var name, owner string
	create := &cobra.Command{
		Use:   "create <code>",
		Short: "Create a room; the owner becomes its first participant",
		Args:  cobra.ExactArgs(1),
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&owner, "owner", "", "owner user id")
	create.RunE = func(cmd *cobra.Command, args []string) error {
		return withStore(opts, func(st *sqlite.SQLiteStore, cmd *cobra.Command) error {
			var ownerID *string
			if owner != "" {
				if _, err := st.GetUserByID(cmd.Context(), owner); err != nil {
					return fmt.Errorf("owner: %w", err)
				}
				ownerID = &owner
			}
			room, err := st.CreateRoom(cmd.Context(), args[0], name, ownerID)
			if err != nil {
				return fmt.Errorf("create room: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), room.ID)
			return nil
		})(cmd, args)
	}

	grant := &cobra.Command{
		Use:   "grant <code> <user-id>",
		Short: "Authorize a user to join a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(st *sqlite.SQLiteStore, cmd *cobra.Command) error {
				room, err := st.GetRoomByCode(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("room: %w", err)
				}
				if _, err := st.GetUserByID(cmd.Context(), args[1]); err != nil {
					return fmt.Errorf("user: %w", err)
				}
				return st.AddParticipant(cmd.Context(), room.ID, args[1])
			})(cmd, args)
		},
	}

	roomCmd.AddCommand(create, grant)
	return roomCmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			token, err := auth.NewService(st, app.JWTConfig(cfg), logger).IssueToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
