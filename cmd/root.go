package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	cfgcmd "boshladle/cmd/commands/config"
	"boshladle/internal/boshlite"
	"boshladle/internal/config"
	"boshladle/internal/options"
	"boshladle/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Process exit codes.
const (
	ExitOK     = 0
	ExitError  = 1
	ExitUsage  = 2
	ExitConfig = 3
)

// SpinupFunc launches a BOSH Lite instance. boshlite.Spinup is the real one.
type SpinupFunc func(ctx context.Context, client boshlite.EC2API, subnetID, name, securityGroup, keyPair, instanceType string, diskSize int, opts ...boshlite.Option) (*boshlite.Instance, error)

// ClientFactory builds an authenticated EC2 client.
type ClientFactory func(ctx context.Context, creds config.Credentials, region string) (boshlite.EC2API, error)

// Env is everything a run reads from or writes to the outside world.
type Env struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Getenv    func(string) string
	NewClient ClientFactory
	Spinup    SpinupFunc
}

// DefaultEnv returns an Env wired to the process and to AWS.
func DefaultEnv() Env {
	return Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		NewClient: func(ctx context.Context, creds config.Credentials, region string) (boshlite.EC2API, error) {
			client, err := boshlite.NewClient(ctx, creds, region)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		Spinup: boshlite.Spinup,
	}
}

// rootCmd represents the base command: launching a BOSH Lite VM.
func rootCmd(env Env, args []string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "bosh-ladle -s SUBNET -n NAME [flags]",
		Short: "Launch a BOSH Lite VM on EC2",
		Long: `bosh-ladle launches a single BOSH Lite development VM on Amazon EC2.

AWS credentials are read from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY,
both of which must be set. The region comes from AWS_REGION,
AWS_DEFAULT_REGION or 'bosh-ladle config set region', defaulting to
us-east-1.

Examples:
  # Minimal
  bosh-ladle -s subnet-0123abcd -n my-bosh-lite

  # Everything spelled out
  bosh-ladle -s subnet-0123abcd -n my-bosh-lite \
    -i m3.xlarge -g bosh -k gocd_bosh_lite -d 80`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &options.UsageError{Msg: fmt.Sprintf("unknown argument %q", args[0])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLaunch(cmd, env)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	options.Register(cmd.Flags())

	// Help wins over any other problem on the command line.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		if options.HasHelp(args) {
			return pflag.ErrHelp
		}
		return options.ClassifyParseError(err)
	})

	cmd.AddCommand(cfgcmd.NewCommand())

	return cmd
}

// runLaunch checks credentials, then the required flags, then makes the
// single provisioning call.
func runLaunch(cmd *cobra.Command, env Env) error {
	creds, err := config.LoadCredentials(env.Getenv)
	if err != nil {
		return err
	}

	opts, err := options.FromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := cfg.Resolve(env.Getenv)

	ctx := cmd.Context()
	client, err := env.NewClient(ctx, creds, settings.Region)
	if err != nil {
		return fmt.Errorf("failed to create EC2 client: %w", err)
	}

	logLaunchOpts(cmd, opts, settings)

	spinupOpts := []boshlite.Option{boshlite.WithImageName(settings.ImageName)}
	if settings.AMI != "" {
		spinupOpts = append(spinupOpts, boshlite.WithAMI(settings.AMI))
	}

	var inst *boshlite.Instance
	err = ui.RunWithSpinner(cmd.ErrOrStderr(), "Launching instance...", func() error {
		var spinErr error
		inst, spinErr = env.Spinup(ctx, client,
			opts.SubnetID, opts.Name, opts.SecurityGroup, opts.KeyPair, opts.InstanceType, opts.DiskSize,
			spinupOpts...)
		return spinErr
	})
	if err != nil {
		return err
	}

	printLaunched(cmd, inst, ui.IsTerminal(cmd.OutOrStdout()))
	return nil
}

// Run executes the command line args against env and returns the process
// exit code. Errors are reported on env.Stderr.
func Run(ctx context.Context, args []string, env Env) int {
	root := rootCmd(env, args)
	root.SetArgs(args)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(env.Stderr, "Error: %v\n", err)

	var usageErr *options.UsageError
	var missingEnv *config.MissingEnvError
	switch {
	case errors.As(err, &missingEnv):
		return ExitConfig
	case errors.As(err, &usageErr):
		if cmd == nil {
			cmd = root
		}
		fmt.Fprintln(env.Stderr)
		fmt.Fprint(env.Stderr, cmd.UsageString())
		return ExitUsage
	default:
		return ExitError
	}
}

// Execute runs the root command against the real process and exits.
// This is called by main.main().
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], DefaultEnv()))
}
