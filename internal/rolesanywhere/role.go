package rolesanywhere

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/logger"
)

// RoleSpec describes the IAM role to create for Roles Anywhere sessions.
type RoleSpec struct {
	Name string

	// TrustAnchorArn, when set, pins the trust policy to sessions coming
	// through that anchor (ArnEquals on aws:SourceArn).
	TrustAnchorArn string

	// CommonName and OrgUnit, when set, restrict the trust policy to
	// certificates with a matching subject.
	CommonName string
	OrgUnit    string

	// PolicyArns are managed policies to attach after creation.
	PolicyArns []string

	Description string
}

// Role is the created role as the CLI reports it.
type Role struct {
	Name        string   `json:"name"`
	Arn         string   `json:"arn"`
	TrustPolicy string   `json:"trust_policy"`
	PolicyArns  []string `json:"attached_policies,omitempty"`
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal"`
	Action    []string          `json:"Action"`
	Condition *policyCondition  `json:"Condition,omitempty"`
}

type policyCondition struct {
	StringEquals map[string]string `json:"StringEquals,omitempty"`
	ArnEquals    map[string]string `json:"ArnEquals,omitempty"`
}

// TrustPolicy renders the assume-role policy document for the spec. The
// Roles Anywhere session tags certificate subject fields as principal tags,
// which is what the subject conditions match on.
func (s RoleSpec) TrustPolicy() (string, error) {
	statement := policyStatement{
		Effect:    "Allow",
		Principal: map[string]string{"Service": "rolesanywhere.amazonaws.com"},
		Action:    []string{"sts:AssumeRole", "sts:TagSession", "sts:SetSourceIdentity"},
	}

	condition := &policyCondition{}
	if s.CommonName != "" || s.OrgUnit != "" {
		condition.StringEquals = map[string]string{}
		if s.CommonName != "" {
			condition.StringEquals["aws:PrincipalTag/x509Subject/CN"] = s.CommonName
		}
		if s.OrgUnit != "" {
			condition.StringEquals["aws:PrincipalTag/x509Subject/OU"] = s.OrgUnit
		}
	}
	if s.TrustAnchorArn != "" {
		condition.ArnEquals = map[string]string{"aws:SourceArn": s.TrustAnchorArn}
	}
	if condition.StringEquals != nil || condition.ArnEquals != nil {
		statement.Condition = condition
	}

	doc, err := json.Marshal(policyDocument{
		Version:   "2012-10-17",
		Statement: []policyStatement{statement},
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to render trust policy", err)
	}
	return string(doc), nil
}

// CreateRole creates the IAM role with the Roles Anywhere trust policy and
// attaches the spec's managed policies.
func CreateRole(ctx context.Context, api RoleAPI, spec RoleSpec) (*Role, error) {
	if spec.Name == "" {
		return nil, errors.Validation("role name is required")
	}

	policy, err := spec.TrustPolicy()
	if err != nil {
		return nil, err
	}

	description := spec.Description
	if description == "" {
		description = "Role assumed via IAM Roles Anywhere (managed by anchorctl)"
	}

	out, err := api.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(spec.Name),
		AssumeRolePolicyDocument: aws.String(policy),
		Description:              aws.String(description),
	})
	if err != nil {
		return nil, wrapAPIError("create role", err)
	}
	if out.Role == nil {
		return nil, errors.Wrap(errors.ErrCodeAWS, "create role returned no detail", nil)
	}

	role := &Role{
		Name:        aws.ToString(out.Role.RoleName),
		Arn:         aws.ToString(out.Role.Arn),
		TrustPolicy: policy,
	}

	for _, policyArn := range spec.PolicyArns {
		if _, err := api.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
			RoleName:  aws.String(spec.Name),
			PolicyArn: aws.String(policyArn),
		}); err != nil {
			return nil, wrapAPIError("attach role policy", err)
		}
		role.PolicyArns = append(role.PolicyArns, policyArn)
	}

	logger.InfoFields("role created", map[string]interface{}{
		"name":     role.Name,
		"arn":      role.Arn,
		"policies": len(role.PolicyArns),
	})
	return role, nil
}
