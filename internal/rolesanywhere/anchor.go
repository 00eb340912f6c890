package rolesanywhere

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsra "github.com/aws/aws-sdk-go-v2/service/rolesanywhere"
	"github.com/aws/aws-sdk-go-v2/service/rolesanywhere/types"

	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/logger"
)

// TrustAnchor is the slice of a trust anchor the CLI reports.
type TrustAnchor struct {
	Name    string `json:"name"`
	Arn     string `json:"arn"`
	Source  string `json:"source"`
	PCAArn  string `json:"pca_arn,omitempty"`
	Enabled bool   `json:"enabled"`
}

// CreatePCAAnchor creates a trust anchor backed by an ACM Private CA.
func CreatePCAAnchor(ctx context.Context, api AnchorAPI, name, pcaArn string) (*TrustAnchor, error) {
	if pcaArn == "" {
		return nil, errors.Validation("PCA ARN is required")
	}
	return createAnchor(ctx, api, name, types.TrustAnchorTypeAwsAcmPca, &types.SourceDataMemberAcmPcaArn{Value: pcaArn})
}

// CreateBundleAnchor creates a trust anchor from a PEM certificate bundle,
// typically the self-managed local CA certificate.
func CreateBundleAnchor(ctx context.Context, api AnchorAPI, name string, bundlePEM []byte) (*TrustAnchor, error) {
	if len(bundlePEM) == 0 {
		return nil, errors.Validation("certificate bundle is empty")
	}
	return createAnchor(ctx, api, name, types.TrustAnchorTypeCertificateBundle, &types.SourceDataMemberX509CertificateData{Value: string(bundlePEM)})
}

func createAnchor(ctx context.Context, api AnchorAPI, name string, sourceType types.TrustAnchorType, data types.SourceData) (*TrustAnchor, error) {
	if name == "" {
		return nil, errors.Validation("trust anchor name is required")
	}

	out, err := api.CreateTrustAnchor(ctx, &awsra.CreateTrustAnchorInput{
		Name:    aws.String(name),
		Enabled: aws.Bool(true),
		Source: &types.Source{
			SourceType: sourceType,
			SourceData: data,
		},
	})
	if err != nil {
		return nil, wrapAPIError("create trust anchor", err)
	}
	if out.TrustAnchor == nil {
		return nil, errors.Wrap(errors.ErrCodeAWS, "create trust anchor returned no detail", nil)
	}

	anchor := anchorFromDetail(*out.TrustAnchor)
	logger.InfoFields("trust anchor created", map[string]interface{}{
		"name": anchor.Name,
		"arn":  anchor.Arn,
	})
	return &anchor, nil
}

// ListAnchors returns all trust anchors in the account, following
// pagination.
func ListAnchors(ctx context.Context, api AnchorAPI) ([]TrustAnchor, error) {
	var anchors []TrustAnchor
	var nextToken *string

	for {
		out, err := api.ListTrustAnchors(ctx, &awsra.ListTrustAnchorsInput{NextToken: nextToken})
		if err != nil {
			return nil, wrapAPIError("list trust anchors", err)
		}
		for _, detail := range out.TrustAnchors {
			anchors = append(anchors, anchorFromDetail(detail))
		}
		if out.NextToken == nil {
			return anchors, nil
		}
		nextToken = out.NextToken
	}
}

// GetAnchor fetches one trust anchor by ARN or by name. An ARN is resolved
// directly through GetTrustAnchor; a name is matched against the account's
// anchors.
func GetAnchor(ctx context.Context, api AnchorAPI, ref string) (*TrustAnchor, error) {
	if ref == "" {
		return nil, errors.Validation("trust anchor ARN or name is required")
	}

	if strings.HasPrefix(ref, "arn:") {
		// The trust anchor ID is the last ARN path segment.
		id := ref[strings.LastIndex(ref, "/")+1:]
		out, err := api.GetTrustAnchor(ctx, &awsra.GetTrustAnchorInput{TrustAnchorId: aws.String(id)})
		if err != nil {
			return nil, wrapAPIError("get trust anchor", err)
		}
		if out.TrustAnchor == nil {
			return nil, errors.Wrap(errors.ErrCodeAWS, "get trust anchor returned no detail", nil)
		}
		anchor := anchorFromDetail(*out.TrustAnchor)
		return &anchor, nil
	}

	anchors, err := ListAnchors(ctx, api)
	if err != nil {
		return nil, err
	}
	for i := range anchors {
		if anchors[i].Name == ref {
			return &anchors[i], nil
		}
	}
	return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("no trust anchor named %q", ref), nil)
}

func anchorFromDetail(detail types.TrustAnchorDetail) TrustAnchor {
	anchor := TrustAnchor{
		Name:    aws.ToString(detail.Name),
		Arn:     aws.ToString(detail.TrustAnchorArn),
		Enabled: aws.ToBool(detail.Enabled),
	}
	if detail.Source != nil {
		anchor.Source = string(detail.Source.SourceType)
		if data, ok := detail.Source.SourceData.(*types.SourceDataMemberAcmPcaArn); ok {
			anchor.PCAArn = data.Value
		}
	}
	return anchor
}
