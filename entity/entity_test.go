package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Product struct{}

func (Product) Table() string { return "t_product" }

type User struct{}

func (User) Table() string { return "t_user" }

var (
	ProductName = Field[Product]("Name")
	UserName    = Field[User]("Name")
)

func TestField_QualifiedName(t *testing.T) {
	require.Equal(t, "Name", ProductName.Name())
	require.Equal(t, "t_product.Name", ProductName.QualifiedName())
	require.Equal(t, "t_user.Name", UserName.QualifiedName())
}

func TestTableAndNames(t *testing.T) {
	require.Equal(t, "t_user", Table[User]())
	require.Equal(t, []string{"Name", "Name"}, Names(ProductName, UserName))
}
