// Package rolesanywhere wraps the AWS APIs behind IAM Roles Anywhere
// provisioning: trust anchors and profiles on the Roles Anywhere service,
// role creation on IAM, and caller-identity checks on STS. SDK clients are
// consumed through small interfaces so tests mock at the API boundary.
package rolesanywhere

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	awsra "github.com/aws/aws-sdk-go-v2/service/rolesanywhere"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/anchorctl/anchorctl/internal/errors"
)

// AnchorAPI is the subset of the Roles Anywhere client used for trust
// anchors and profiles.
type AnchorAPI interface {
	CreateTrustAnchor(ctx context.Context, params *awsra.CreateTrustAnchorInput, optFns ...func(*awsra.Options)) (*awsra.CreateTrustAnchorOutput, error)
	GetTrustAnchor(ctx context.Context, params *awsra.GetTrustAnchorInput, optFns ...func(*awsra.Options)) (*awsra.GetTrustAnchorOutput, error)
	ListTrustAnchors(ctx context.Context, params *awsra.ListTrustAnchorsInput, optFns ...func(*awsra.Options)) (*awsra.ListTrustAnchorsOutput, error)
	CreateProfile(ctx context.Context, params *awsra.CreateProfileInput, optFns ...func(*awsra.Options)) (*awsra.CreateProfileOutput, error)
	ListProfiles(ctx context.Context, params *awsra.ListProfilesInput, optFns ...func(*awsra.Options)) (*awsra.ListProfilesOutput, error)
}

// RoleAPI is the subset of the IAM client used for role provisioning.
type RoleAPI interface {
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
}

// IdentityAPI is the subset of the STS client used for credential checks.
type IdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Clients bundles the AWS service clients the CLI commands need.
type Clients struct {
	Anchors  AnchorAPI
	Roles    RoleAPI
	Identity IdentityAPI
}

// LoadClients builds service clients from the default AWS credential chain,
// pinned to region when non-empty.
func LoadClients(ctx context.Context, region string) (*Clients, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAWS, "failed to load AWS configuration", err)
	}

	return &Clients{
		Anchors:  awsra.NewFromConfig(cfg),
		Roles:    iam.NewFromConfig(cfg),
		Identity: sts.NewFromConfig(cfg),
	}, nil
}

// wrapAPIError converts an AWS API failure into a CertError, keeping the
// service error code in the message when available.
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return errors.Wrap(errors.ErrCodeAWS, fmt.Sprintf("%s failed (%s)", op, apiErr.ErrorCode()), err)
	}
	return errors.Wrap(errors.ErrCodeAWS, fmt.Sprintf("%s failed", op), err)
}
