package cli

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	awsra "github.com/aws/aws-sdk-go-v2/service/rolesanywhere"
	ratypes "github.com/aws/aws-sdk-go-v2/service/rolesanywhere/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/anchorctl/anchorctl/internal/rolesanywhere"
)

// stubAnchorAPI answers Roles Anywhere calls with canned details.
type stubAnchorAPI struct {
	anchors  []ratypes.TrustAnchorDetail
	profiles []ratypes.ProfileDetail
	err      error
}

func (s *stubAnchorAPI) CreateTrustAnchor(_ context.Context, in *awsra.CreateTrustAnchorInput, _ ...func(*awsra.Options)) (*awsra.CreateTrustAnchorOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	detail := ratypes.TrustAnchorDetail{
		Name:           in.Name,
		TrustAnchorArn: aws.String("arn:aws:rolesanywhere:us-east-1:123456789012:trust-anchor/ta-1"),
		Enabled:        in.Enabled,
		Source:         in.Source,
	}
	s.anchors = append(s.anchors, detail)
	return &awsra.CreateTrustAnchorOutput{TrustAnchor: &detail}, nil
}

func (s *stubAnchorAPI) GetTrustAnchor(_ context.Context, in *awsra.GetTrustAnchorInput, _ ...func(*awsra.Options)) (*awsra.GetTrustAnchorOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.anchors {
		arn := aws.ToString(s.anchors[i].TrustAnchorArn)
		if strings.HasSuffix(arn, "/"+aws.ToString(in.TrustAnchorId)) {
			return &awsra.GetTrustAnchorOutput{TrustAnchor: &s.anchors[i]}, nil
		}
	}
	return nil, &ratypes.ResourceNotFoundException{Message: aws.String("trust anchor not found")}
}

func (s *stubAnchorAPI) ListTrustAnchors(_ context.Context, _ *awsra.ListTrustAnchorsInput, _ ...func(*awsra.Options)) (*awsra.ListTrustAnchorsOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &awsra.ListTrustAnchorsOutput{TrustAnchors: s.anchors}, nil
}

func (s *stubAnchorAPI) CreateProfile(_ context.Context, in *awsra.CreateProfileInput, _ ...func(*awsra.Options)) (*awsra.CreateProfileOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	detail := ratypes.ProfileDetail{
		Name:            in.Name,
		ProfileArn:      aws.String("arn:aws:rolesanywhere:us-east-1:123456789012:profile/p-1"),
		RoleArns:        in.RoleArns,
		DurationSeconds: in.DurationSeconds,
		Enabled:         in.Enabled,
	}
	s.profiles = append(s.profiles, detail)
	return &awsra.CreateProfileOutput{Profile: &detail}, nil
}

func (s *stubAnchorAPI) ListProfiles(_ context.Context, _ *awsra.ListProfilesInput, _ ...func(*awsra.Options)) (*awsra.ListProfilesOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &awsra.ListProfilesOutput{Profiles: s.profiles}, nil
}

// stubRoleAPI records IAM role and policy operations.
type stubRoleAPI struct {
	created  []string
	attached []string
}

func (s *stubRoleAPI) CreateRole(_ context.Context, in *iam.CreateRoleInput, _ ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	s.created = append(s.created, aws.ToString(in.RoleName))
	return &iam.CreateRoleOutput{Role: &iamtypes.Role{
		RoleName: in.RoleName,
		Arn:      aws.String("arn:aws:iam::123456789012:role/" + aws.ToString(in.RoleName)),
	}}, nil
}

func (s *stubRoleAPI) AttachRolePolicy(_ context.Context, in *iam.AttachRolePolicyInput, _ ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error) {
	s.attached = append(s.attached, aws.ToString(in.PolicyArn))
	return &iam.AttachRolePolicyOutput{}, nil
}

// stubIdentityAPI answers STS caller-identity calls.
type stubIdentityAPI struct {
	err error
}

func (s *stubIdentityAPI) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/ops"),
		UserId:  aws.String("AIDAEXAMPLE"),
	}, nil
}

func stubClients() (*rolesanywhere.Clients, *stubAnchorAPI, *stubRoleAPI) {
	anchors := &stubAnchorAPI{}
	roles := &stubRoleAPI{}
	return &rolesanywhere.Clients{
		Anchors:  anchors,
		Roles:    roles,
		Identity: &stubIdentityAPI{},
	}, anchors, roles
}
