package rolesanywhere

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsra "github.com/aws/aws-sdk-go-v2/service/rolesanywhere"
	"github.com/aws/aws-sdk-go-v2/service/rolesanywhere/types"

	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/logger"
)

// Session duration bounds enforced by the Roles Anywhere API.
const (
	MinSessionSeconds     = 900
	MaxSessionSeconds     = 43200
	DefaultSessionSeconds = 3600
)

// Profile is the slice of a Roles Anywhere profile the CLI reports.
type Profile struct {
	Name            string   `json:"name"`
	Arn             string   `json:"arn"`
	RoleArns        []string `json:"role_arns"`
	DurationSeconds int32    `json:"duration_seconds"`
	Enabled         bool     `json:"enabled"`
}

// CreateProfile creates a Roles Anywhere profile mapping certificates to
// the given role ARNs. durationSeconds zero means the default session
// duration.
func CreateProfile(ctx context.Context, api AnchorAPI, name string, roleArns []string, durationSeconds int32) (*Profile, error) {
	if name == "" {
		return nil, errors.Validation("profile name is required")
	}
	if len(roleArns) == 0 {
		return nil, errors.Validation("at least one role ARN is required")
	}
	if durationSeconds == 0 {
		durationSeconds = DefaultSessionSeconds
	}
	if durationSeconds < MinSessionSeconds || durationSeconds > MaxSessionSeconds {
		return nil, errors.Validation("session duration must be between 900 and 43200 seconds")
	}

	out, err := api.CreateProfile(ctx, &awsra.CreateProfileInput{
		Name:            aws.String(name),
		RoleArns:        roleArns,
		DurationSeconds: aws.Int32(durationSeconds),
		Enabled:         aws.Bool(true),
	})
	if err != nil {
		return nil, wrapAPIError("create profile", err)
	}
	if out.Profile == nil {
		return nil, errors.Wrap(errors.ErrCodeAWS, "create profile returned no detail", nil)
	}

	profile := profileFromDetail(*out.Profile)
	logger.InfoFields("profile created", map[string]interface{}{
		"name": profile.Name,
		"arn":  profile.Arn,
	})
	return &profile, nil
}

// ListProfiles returns all Roles Anywhere profiles in the account,
// following pagination.
func ListProfiles(ctx context.Context, api AnchorAPI) ([]Profile, error) {
	var profiles []Profile
	var nextToken *string

	for {
		out, err := api.ListProfiles(ctx, &awsra.ListProfilesInput{NextToken: nextToken})
		if err != nil {
			return nil, wrapAPIError("list profiles", err)
		}
		for _, detail := range out.Profiles {
			profiles = append(profiles, profileFromDetail(detail))
		}
		if out.NextToken == nil {
			return profiles, nil
		}
		nextToken = out.NextToken
	}
}

func profileFromDetail(detail types.ProfileDetail) Profile {
	return Profile{
		Name:            aws.ToString(detail.Name),
		Arn:             aws.ToString(detail.ProfileArn),
		RoleArns:        detail.RoleArns,
		DurationSeconds: aws.ToInt32(detail.DurationSeconds),
		Enabled:         aws.ToBool(detail.Enabled),
	}
}
