package boshlite

import (
	"context"
	"fmt"
	"math"

	"boshladle/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Instance is the launched VM as reported by RunInstances.
type Instance struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	ImageID   string `json:"image_id"`
	PrivateIP string `json:"private_ip,omitempty"`
	SubnetID  string `json:"subnet_id"`
}

type spinupOptions struct {
	amiID     string
	imageName string
}

// Option tunes how Spinup picks the image to launch.
type Option func(*spinupOptions)

// WithAMI launches the given AMI instead of searching by name.
func WithAMI(id string) Option {
	return func(o *spinupOptions) { o.amiID = id }
}

// WithImageName sets the name pattern used to find the newest BOSH Lite
// image when no AMI is given.
func WithImageName(pattern string) Option {
	return func(o *spinupOptions) { o.imageName = pattern }
}

// Spinup launches one BOSH Lite instance. RunInstances is called exactly
// once; any error from it is returned wrapped and not retried.
//
// The instance is placed in subnetID with securityGroup (name or ID),
// keyPair and instanceType, tagged with name, and given a root volume of
// diskSize GiB.
func Spinup(ctx context.Context, client EC2API, subnetID, name, securityGroup, keyPair, instanceType string, diskSize int, opts ...Option) (*Instance, error) {
	if diskSize < 0 || diskSize > math.MaxInt32 {
		return nil, fmt.Errorf("%d GiB: %w", diskSize, ErrInvalidDiskSize)
	}

	o := spinupOptions{imageName: config.DefaultImageName}
	for _, opt := range opts {
		opt(&o)
	}

	image, err := resolveImage(ctx, client, o.amiID, o.imageName)
	if err != nil {
		return nil, err
	}

	groupID, err := resolveSecurityGroup(ctx, client, subnetID, securityGroup)
	if err != nil {
		return nil, err
	}

	input := &ec2.RunInstancesInput{
		ImageId:          image.ImageId,
		InstanceType:     types.InstanceType(instanceType),
		MinCount:         aws.Int32(1),
		MaxCount:         aws.Int32(1),
		KeyName:          aws.String(keyPair),
		SubnetId:         aws.String(subnetID),
		SecurityGroupIds: []string{groupID},
		BlockDeviceMappings: []types.BlockDeviceMapping{
			{
				DeviceName: aws.String(rootDevice(image)),
				Ebs: &types.EbsBlockDevice{
					VolumeSize:          aws.Int32(int32(diskSize)),
					VolumeType:          types.VolumeTypeGp2,
					DeleteOnTermination: aws.Bool(true),
				},
			},
		},
		TagSpecifications: []types.TagSpecification{
			{
				ResourceType: types.ResourceTypeInstance,
				Tags: []types.Tag{
					{Key: aws.String("Name"), Value: aws.String(name)},
				},
			},
		},
	}

	out, err := client.RunInstances(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to launch instance: %w", err)
	}
	if len(out.Instances) == 0 {
		return nil, fmt.Errorf("failed to launch instance: no instance in response")
	}

	return toInstance(out.Instances[0], name), nil
}

func toInstance(i types.Instance, name string) *Instance {
	inst := &Instance{
		ID:        aws.ToString(i.InstanceId),
		Name:      name,
		ImageID:   aws.ToString(i.ImageId),
		PrivateIP: aws.ToString(i.PrivateIpAddress),
		SubnetID:  aws.ToString(i.SubnetId),
	}
	if i.State != nil {
		inst.State = string(i.State.Name)
	}
	return inst
}
