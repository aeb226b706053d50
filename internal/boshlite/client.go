// Package boshlite launches BOSH Lite VMs on EC2.
package boshlite

import (
	"context"
	"fmt"

	"boshladle/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

const appID = "bosh-ladle"

// EC2API is the subset of the EC2 client used to launch an instance.
type EC2API interface {
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
}

var _ EC2API = (*ec2.Client)(nil)

// ClientOption customises the EC2 client built by NewClient.
type ClientOption func(*ec2.Options)

// WithEndpoint points the client at a non-default endpoint, such as a local
// test server.
func WithEndpoint(url string) ClientOption {
	return func(o *ec2.Options) {
		o.BaseEndpoint = aws.String(url)
	}
}

// NewClient builds an EC2 client authenticated with the given static
// credentials. Requests are attempted once; the SDK's retryer is disabled.
func NewClient(ctx context.Context, creds config.Credentials, region string, opts ...ClientOption) (*ec2.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		),
		awsconfig.WithRetryMaxAttempts(1),
		awsconfig.WithAppID(appID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return ec2.NewFromConfig(cfg, func(o *ec2.Options) {
		for _, opt := range opts {
			opt(o)
		}
	}), nil
}
