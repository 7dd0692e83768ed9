package graph

import "github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"

// Policies lists who may run each operation. Every resolver checks its entry
// before doing anything else; an operation missing here is denied to everyone.
// Open operations may still apply finer rules in the service layer.
var Policies = auth.Policies{
	"version":      auth.Everyone,
	"ping":         auth.Everyone,
	"getPublicKey": auth.Everyone,

	"me":          auth.Everyone,
	"getUserList": auth.AdminUsers,
	"signIn":      auth.Everyone,
	"signOut":     auth.AllUsers,
	"createUser":  auth.Everyone,
	"updateUser":  auth.AllUsers,
	"deleteUser":  auth.AllUsers,

	"getArticleList": auth.Everyone,
	"getArticle":     auth.Everyone,
	"createArticle":  auth.AdminUsers,
	"updateArticle":  auth.AdminUsers,
	"deleteArticle":  auth.AdminUsers,

	"getProductList": auth.Everyone,
	"createProduct":  auth.AdminUsers,
	"updateProduct":  auth.AdminUsers,
	"deleteProduct":  auth.AdminUsers,

	"getBannerList": auth.Everyone,
	"createBanner":  auth.AdminUsers,
	"updateBanner":  auth.AdminUsers,
	"deleteBanner":  auth.AdminUsers,

	"getPhotoList":    auth.Everyone,
	"getPhotoListAll": auth.AdminUsers,
	"createPhoto":     auth.AdminUsers,
	"updatePhoto":     auth.AdminUsers,
	"deletePhoto":     auth.AdminUsers,

	"getJSONData": auth.Everyone,
	"setJSONData": auth.AdminUsers,

	"getUploadLogList": auth.AdminUsers,
	"singleUpload":     auth.AllUsers,
}
