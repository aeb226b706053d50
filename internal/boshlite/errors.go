package boshlite

import "errors"

// Sentinel errors for classifying launch failures.
//
//	return fmt.Errorf("security group %q: %w", name, ErrNotFound)
var (
	// ErrNotFound indicates a referenced resource (image, subnet, security
	// group) does not exist or is not visible to the credentials.
	ErrNotFound = errors.New("resource not found")

	// ErrAmbiguous indicates a name matched more than one resource where
	// exactly one was required.
	ErrAmbiguous = errors.New("ambiguous resource name")

	// ErrInvalidDiskSize indicates a root volume size that cannot be sent
	// to EC2.
	ErrInvalidDiskSize = errors.New("invalid disk size")
)
