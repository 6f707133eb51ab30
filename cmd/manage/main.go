package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"recipes/internal/auth"
	"recipes/internal/config"
	"recipes/internal/db"
	"recipes/internal/logger"
	"recipes/internal/media"
	"recipes/internal/model"
	"recipes/internal/repository"
	"recipes/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "manage",
		Short:        "Administrative commands for the recipe service",
		SilenceUsage: true,
	}
	root.AddCommand(createSuperuserCmd(), listUsersCmd(), deleteUserCmd())
	return root
}

func createSuperuserCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an administrator account",
		Long: "Creates an active user with staff and superuser flags. " +
			"The password is read from --password, then $SUPERUSER_PASSWORD, then stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("SUPERUSER_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			return withUsers(cmd, func(ctx context.Context, users service.UserService, log *slog.Logger) error {
				user, err := users.CreateSuperuser(ctx, email, password, name)
				if err != nil {
					return err
				}
				log.Info("superuser created", "id", user.ID, "email", user.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address of the new account")
	cmd.Flags().StringVar(&password, "password", "", "password of the new account")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listusers",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(ctx context.Context, users service.UserService, _ *slog.Logger) error {
				list, err := users.ListUsers(ctx)
				if err != nil {
					return err
				}
				printUsers(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
}

func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deleteuser EMAIL",
		Short: "Delete an account with its tags, ingredients and recipes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(ctx context.Context, users service.UserService, log *slog.Logger) error {
				if err := users.DeleteUser(ctx, args[0]); err != nil {
					return err
				}
				log.Info("user deleted", "email", args[0])
				return nil
			})
		},
	}
}

// withUsers connects to the configured database and hands fn a UserService.
// Administrative commands never reset the schema.
func withUsers(cmd *cobra.Command, fn func(context.Context, service.UserService, *slog.Logger) error) error {
	cfg := config.Load()
	cfg.ResetDB = false
	log := logger.New(logger.Config{
		Writer:      cmd.ErrOrStderr(),
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
		Level:       logger.ParseLevel(cfg.LogLevel),
	})
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	gormDB, err := db.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	storage, err := media.NewStorage(cfg.MediaRoot, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}
	users := service.NewUserService(repository.NewUserRepository(gormDB), auth.NewBcryptHasher(),
		service.WithRecipeImages(storage),
		service.WithUserLogger(log),
	)
	return fn(ctx, users, log)
}

func printUsers(w io.Writer, users []model.User) {
	for _, u := range users {
		role := "user"
		if u.IsSuperuser {
			role = "superuser"
		} else if u.IsStaff {
			role = "staff"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\tactive=%t\n", u.ID, u.Email, u.Name, role, u.IsActive)
	}
}
