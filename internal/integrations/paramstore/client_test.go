package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
}

func (f *fakeAPI) GetParameter(_ context.Context, _ *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return f.getOut, f.getErr
}

// fakeGetter is a minimal Getter stub for FetchApplicationID tests.
type fakeGetter struct {
	val string
	err error
}

func (f *fakeGetter) GetParameter(_ context.Context, _ string) (string, error) {
	return f.val, f.err
}

func strPtr(s string) *string { return &s }

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(`{"applicationId":"amzn1.ask.skill.abc"}`),
	}}}
	client, err := New(api)
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, `{"applicationId":"amzn1.ask.skill.abc"}`, v)
}

func TestGetParameter_SecureString(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr("v"), Type: types.ParameterType("SecureString"),
	}}}
	client, err := New(api)
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p"), Value: nil}}}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_ApiError(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("boom")}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestFetchApplicationID_HappyPath(t *testing.T) {
	g := &fakeGetter{val: `{"applicationId":"amzn1.ask.skill.abc"}`}
	id, err := FetchApplicationID(context.Background(), g, "/catalog-skill/app-id")
	require.NoError(t, err)
	require.Equal(t, "amzn1.ask.skill.abc", id)
}

func TestFetchApplicationID_MissingField(t *testing.T) {
	g := &fakeGetter{val: `{"other":"value"}`}
	_, err := FetchApplicationID(context.Background(), g, "/catalog-skill/app-id")
	require.Error(t, err)
	require.Contains(t, err.Error(), "application id is empty")
}

func TestFetchApplicationID_MalformedJSON(t *testing.T) {
	g := &fakeGetter{val: `{"broken`}
	_, err := FetchApplicationID(context.Background(), g, "/catalog-skill/app-id")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshal")
}

func TestFetchApplicationID_GetterError(t *testing.T) {
	g := &fakeGetter{err: errors.New("ssm unavailable")}
	_, err := FetchApplicationID(context.Background(), g, "/catalog-skill/app-id")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ssm unavailable")
}

func TestFetchApplicationID_NilGetter(t *testing.T) {
	_, err := FetchApplicationID(context.Background(), nil, "/catalog-skill/app-id")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nil")
}

func TestFetchApplicationID_EmptyName(t *testing.T) {
	g := &fakeGetter{val: `{"applicationId":"amzn1.ask.skill.abc"}`}
	_, err := FetchApplicationID(context.Background(), g, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}
