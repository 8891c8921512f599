package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// AccessClient calls AccessServer over a client connection.
type AccessClient struct {
	cc grpc.ClientConnInterface
}

func NewAccessClient(cc grpc.ClientConnInterface) *AccessClient {
	return &AccessClient{cc: cc}
}

// WithToken attaches a bearer token to outgoing calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func (c *AccessClient) call(ctx context.Context, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login returns the issued token, or "" with the server message when the
// credentials are rejected.
func (c *AccessClient) Login(ctx context.Context, username, password string) (token, message string, err error) {
	out, err := c.call(ctx, MethodLogin, map[string]interface{}{"username": username, "password": password})
	if err != nil {
		return "", "", err
	}
	f := out.GetFields()
	return f["token"].GetStringValue(), f["message"].GetStringValue(), nil
}

// ValidateToken reports whether token is valid and, if so, whose it is.
func (c *AccessClient) ValidateToken(ctx context.Context, token string) (valid bool, username string, err error) {
	out, err := c.call(ctx, MethodValidateToken, map[string]interface{}{"token": token})
	if err != nil {
		return false, "", err
	}
	f := out.GetFields()
	return f["valid"].GetBoolValue(), f["username"].GetStringValue(), nil
}

// CheckPermission reports whether the caller holds permission.
func (c *AccessClient) CheckPermission(ctx context.Context, permission string) (bool, error) {
	out, err := c.call(ctx, MethodCheckPermission, map[string]interface{}{"permission": permission})
	if err != nil {
		return false, err
	}
	return out.GetFields()["granted"].GetBoolValue(), nil
}

// ResolveRoute returns the view ("page" or "denied") and page for path.
func (c *AccessClient) ResolveRoute(ctx context.Context, path string) (view, page string, err error) {
	out, err := c.call(ctx, MethodResolveRoute, map[string]interface{}{"path": path})
	if err != nil {
		return "", "", err
	}
	f := out.GetFields()
	return f["view"].GetStringValue(), f["page"].GetStringValue(), nil
}

// Permissions lists the caller's permission codes.
func (c *AccessClient) Permissions(ctx context.Context) ([]string, error) {
	out, err := c.call(ctx, MethodPermissions, nil)
	if err != nil {
		return nil, err
	}
	var codes []string
	for _, v := range out.GetFields()["codes"].GetListValue().GetValues() {
		codes = append(codes, v.GetStringValue())
	}
	return codes, nil
}
