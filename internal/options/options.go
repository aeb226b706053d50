// Package options defines the command-line flags for launching a BOSH Lite
// VM and turns a token list into a validated Options record.
package options

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Flag names. The long names are also the keys used in Options.Given.
const (
	FlagInstanceType  = "instance-type"
	FlagSubnetID      = "subnet-id"
	FlagSecurityGroup = "security-group"
	FlagKeyPair       = "key-pair"
	FlagName          = "name"
	FlagDiskSize      = "disk-size"
	FlagHelp          = "help"
)

// Defaults for the optional flags.
const (
	DefaultInstanceType  = "m3.xlarge"
	DefaultSecurityGroup = "bosh"
	DefaultKeyPair       = "gocd_bosh_lite"
	DefaultDiskSize      = 40
)

// requiredFlags lists the flags that must be given, in the order they are
// reported when missing.
var requiredFlags = []string{FlagSubnetID, FlagName}

// ErrHelp is returned by Parse when the help flag was given. Callers should
// print usage and exit successfully.
var ErrHelp = errors.New("help requested")

// UsageError reports a problem with the command line itself: an unknown or
// malformed flag, or a missing required flag.
type UsageError struct {
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *UsageError) Unwrap() error { return e.Err }

// Options is the parsed and defaulted command line.
type Options struct {
	InstanceType  string
	SubnetID      string
	SecurityGroup string
	KeyPair       string
	Name          string
	DiskSize      int
	Help          bool

	// Given holds the long names of the flags that were set explicitly.
	// It is informational only.
	Given map[string]bool
}

// IsGiven reports whether the named flag was set on the command line.
func (o *Options) IsGiven(flag string) bool {
	return o.Given[flag]
}

// Register defines the launch flags on fs.
func Register(fs *pflag.FlagSet) {
	fs.StringP(FlagInstanceType, "i", DefaultInstanceType, "EC2 instance type")
	fs.StringP(FlagSubnetID, "s", "", "Subnet ID to launch into (required)")
	fs.StringP(FlagSecurityGroup, "g", DefaultSecurityGroup, "Security group name or ID")
	fs.StringP(FlagKeyPair, "k", DefaultKeyPair, "EC2 key pair name")
	fs.StringP(FlagName, "n", "", "Value of the instance's Name tag (required)")
	ds := diskSizeValue(DefaultDiskSize)
	fs.VarP(&ds, FlagDiskSize, "d", "Root volume size in GiB")
	fs.BoolP(FlagHelp, "h", false, "Show this help")
}

// NewFlagSet returns a flag set with the launch flags registered. Parse
// errors are returned, never printed.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	Register(fs)
	return fs
}

// Parse parses args into Options.
//
// A help flag anywhere before "--" wins over every other problem and yields
// ErrHelp. Otherwise unknown flags, malformed values, positional arguments
// and missing required flags all yield a *UsageError.
func Parse(args []string) (*Options, error) {
	fs := NewFlagSet("bosh-ladle")
	if err := fs.Parse(args); err != nil {
		if HasHelp(args) {
			return nil, ErrHelp
		}
		return nil, ClassifyParseError(err)
	}
	if help, _ := fs.GetBool(FlagHelp); help {
		return nil, ErrHelp
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{Msg: fmt.Sprintf("unknown argument %q", fs.Arg(0))}
	}
	return FromFlags(fs)
}

// FromFlags builds Options from an already parsed flag set and checks that
// the required flags are present.
func FromFlags(fs *pflag.FlagSet) (*Options, error) {
	opts := &Options{Given: make(map[string]bool)}

	fs.Visit(func(f *pflag.Flag) {
		opts.Given[f.Name] = true
	})

	var missing []string
	for _, name := range requiredFlags {
		v, _ := fs.GetString(name)
		if strings.TrimSpace(v) == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return nil, &UsageError{Msg: fmt.Sprintf("missing required flag(s): %s", strings.Join(missing, ", "))}
	}

	opts.InstanceType, _ = fs.GetString(FlagInstanceType)
	opts.SubnetID, _ = fs.GetString(FlagSubnetID)
	opts.SecurityGroup, _ = fs.GetString(FlagSecurityGroup)
	opts.KeyPair, _ = fs.GetString(FlagKeyPair)
	opts.Name, _ = fs.GetString(FlagName)
	opts.Help, _ = fs.GetBool(FlagHelp)

	ds, ok := fs.Lookup(FlagDiskSize).Value.(*diskSizeValue)
	if !ok {
		return nil, &UsageError{Msg: "invalid disk size"}
	}
	opts.DiskSize = int(*ds)

	return opts, nil
}

// diskSizeValue is a pflag.Value holding a disk size in GiB. Values are
// read as base-10 text and must fit the 32-bit volume size EC2 accepts.
type diskSizeValue int32

func (d *diskSizeValue) Set(s string) error {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return fmt.Errorf("want a base-10 number of GiB up to %d, got %q", math.MaxInt32, s)
	}
	*d = diskSizeValue(v)
	return nil
}

func (d *diskSizeValue) String() string { return strconv.Itoa(int(*d)) }

func (d *diskSizeValue) Type() string { return "int" }

// GivenFlags returns the sorted names of the flags that were set explicitly.
func (o *Options) GivenFlags() []string {
	names := make([]string, 0, len(o.Given))
	for name := range o.Given {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClassifyParseError converts a pflag parse error into a *UsageError. Unknown
// flags are reported as "unknown argument".
func ClassifyParseError(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return ErrHelp
	}
	var notExist *pflag.NotExistError
	if errors.As(err, &notExist) {
		return &UsageError{Msg: "unknown argument", Err: err}
	}
	var invalid *pflag.InvalidValueError
	if errors.As(err, &invalid) {
		return &UsageError{Msg: "invalid value", Err: err}
	}
	return &UsageError{Msg: "invalid arguments", Err: err}
}

// HasHelp reports whether a help token appears in args before "--".
func HasHelp(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-h" || a == "--help" || a == "--help=true" {
			return true
		}
	}
	return false
}
