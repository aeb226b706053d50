package boshlite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

const defaultRootDevice = "/dev/sda1"

// resolveImage returns the image to launch. An explicit AMI ID is looked up
// directly; otherwise the newest available image whose name matches pattern
// is chosen.
func resolveImage(ctx context.Context, client EC2API, amiID, pattern string) (types.Image, error) {
	input := &ec2.DescribeImagesInput{}
	if amiID != "" {
		input.ImageIds = []string{amiID}
	} else {
		input.Filters = []types.Filter{
			{Name: aws.String("name"), Values: []string{pattern}},
			{Name: aws.String("state"), Values: []string{"available"}},
		}
	}

	out, err := client.DescribeImages(ctx, input)
	if err != nil {
		if amiID != "" {
			return types.Image{}, fmt.Errorf("failed to look up image %q: %w", amiID, err)
		}
		return types.Image{}, fmt.Errorf("failed to search images matching %q: %w", pattern, err)
	}

	if len(out.Images) == 0 {
		if amiID != "" {
			return types.Image{}, fmt.Errorf("image %q: %w", amiID, ErrNotFound)
		}
		return types.Image{}, fmt.Errorf("no image matching %q: %w", pattern, ErrNotFound)
	}

	images := out.Images
	sort.SliceStable(images, func(i, j int) bool {
		return creationTime(images[i]).After(creationTime(images[j]))
	})
	return images[0], nil
}

func creationTime(img types.Image) time.Time {
	t, err := time.Parse(time.RFC3339, aws.ToString(img.CreationDate))
	if err != nil {
		return time.Time{}
	}
	return t
}

func rootDevice(img types.Image) string {
	if name := aws.ToString(img.RootDeviceName); name != "" {
		return name
	}
	return defaultRootDevice
}

// resolveSecurityGroup maps a security group name or ID to an ID. IDs
// (sg-...) are returned unchanged. Names are resolved within the VPC that
// owns subnetID, because group names are only unique per VPC.
func resolveSecurityGroup(ctx context.Context, client EC2API, subnetID, group string) (string, error) {
	if strings.HasPrefix(group, "sg-") {
		return group, nil
	}

	subnets, err := client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		SubnetIds: []string{subnetID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up subnet %q: %w", subnetID, err)
	}
	if len(subnets.Subnets) == 0 {
		return "", fmt.Errorf("subnet %q: %w", subnetID, ErrNotFound)
	}
	vpcID := aws.ToString(subnets.Subnets[0].VpcId)

	groups, err := client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []types.Filter{
			{Name: aws.String("group-name"), Values: []string{group}},
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve security group %q: %w", group, err)
	}

	switch len(groups.SecurityGroups) {
	case 0:
		return "", fmt.Errorf("security group %q in %s: %w", group, vpcID, ErrNotFound)
	case 1:
		return aws.ToString(groups.SecurityGroups[0].GroupId), nil
	default:
		return "", fmt.Errorf("security group %q in %s: %w", group, vpcID, ErrAmbiguous)
	}
}
