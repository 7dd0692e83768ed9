package graph

import (
	"fmt"
	"mime/multipart"
)

// Upload is a file part of a GraphQL multipart request. The transport places
// the *multipart.FileHeader into the variables where the request map points.
type Upload struct {
	*multipart.FileHeader
}

// ImplementsGraphQLType binds Upload to the SDL scalar.
func (Upload) ImplementsGraphQLType(name string) bool {
	return name == "Upload"
}

// UnmarshalGraphQL accepts only file parts injected by the transport.
func (u *Upload) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case *multipart.FileHeader:
		u.FileHeader = v
		return nil
	default:
		return fmt.Errorf("upload: expected a multipart file, got %T", input)
	}
}
