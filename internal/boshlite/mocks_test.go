package boshlite

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// fakeEC2 records the requests it receives and returns canned responses.
type fakeEC2 struct {
	runInputs    []*ec2.RunInstancesInput
	runOutput    *ec2.RunInstancesOutput
	runErr       error
	imageInputs  []*ec2.DescribeImagesInput
	imageOutput  *ec2.DescribeImagesOutput
	imageErr     error
	subnetInputs []*ec2.DescribeSubnetsInput
	subnetOutput *ec2.DescribeSubnetsOutput
	subnetErr    error
	groupInputs  []*ec2.DescribeSecurityGroupsInput
	groupOutput  *ec2.DescribeSecurityGroupsOutput
	groupErr     error
}

func (f *fakeEC2) RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	f.runInputs = append(f.runInputs, params)
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.runOutput, nil
}

func (f *fakeEC2) DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	f.imageInputs = append(f.imageInputs, params)
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return f.imageOutput, nil
}

func (f *fakeEC2) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	f.subnetInputs = append(f.subnetInputs, params)
	if f.subnetErr != nil {
		return nil, f.subnetErr
	}
	return f.subnetOutput, nil
}

func (f *fakeEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	f.groupInputs = append(f.groupInputs, params)
	if f.groupErr != nil {
		return nil, f.groupErr
	}
	return f.groupOutput, nil
}
