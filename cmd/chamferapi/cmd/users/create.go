package users

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/config"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/bunx"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/users"
)

var (
	emailFlag    string
	usernameFlag string
	passwordFlag string
	rolesInput   []string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user directly in the database",
	Long: `Creates a user without going through the API. Unlike the createUser mutation,
any role may be assigned, including deus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		roles := rolesInput
		if len(roles) == 0 {
			roles = []string{models.RoleCommon}
		}
		if invalid := unknownRoles(roles); len(invalid) > 0 {
			return fmt.Errorf("invalid role(s): %s\nValid roles are: %s",
				strings.Join(invalid, ", "),
				strings.Join(models.KnownRoles, ", "))
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Passwords are digested with the api secret, so the CLI must share it with the server.
		cipher, err := auth.NewCipher(cfg.APISecret)
		if err != nil {
			return fmt.Errorf("failed to initialize cipher: %w", err)
		}

		db, err := bunx.NewDBWithOptions(cfg.DatabaseURL, bunx.Options{MaxOpenConns: cfg.MaxDBConnections})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		svc := users.NewService(repository.NewBunUserRepository(db), cipher)
		user, err := svc.Provision(context.Background(), users.CreateInput{
			Email:    emailFlag,
			Username: usernameFlag,
			Password: password,
			Roles:    roles,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Println("User created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("User ID: %s\n", user.ID)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Roles: %s\n", strings.Join(user.Roles, ", "))
		fmt.Println("----------------------------------------")

		return nil
	},
}

func unknownRoles(roles []string) []string {
	var invalid []string
	for _, role := range roles {
		known := false
		for _, k := range models.KnownRoles {
			if role == k {
				known = true
				break
			}
		}
		if !known {
			invalid = append(invalid, role)
		}
	}
	return invalid
}
