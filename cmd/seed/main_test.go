package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestParseProducts_CSVValido(t *testing.T) {
	in := "code,name,category,location,quantity\nELEC001, Laptop Dell ,Electronics,Warehouse A,10\nFURN001,Office Chair,Furniture,,25\n"
	products, err := parseProducts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Laptop Dell", products[0].Name)
	assert.Equal(t, int64(10), products[0].OpeningQuantity)
	assert.Equal(t, "", products[1].Location)
}

func TestParseProducts_CantidadInvalida(t *testing.T) {
	in := "code,name,category,location,quantity\nX,Y,Z,W,-1\n"
	_, err := parseProducts(strings.NewReader(in))
	assert.ErrorContains(t, err, "fila 2")
}

func TestParseProducts_SinCodigo(t *testing.T) {
	in := "code,name,category,location,quantity\n,Y,Z,W,1\n"
	_, err := parseProducts(strings.NewReader(in))
	assert.Error(t, err)
}

func TestParseProducts_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("code,name,category,location,quantity\nPAP001,Papelería fina,Útiles,Bodega Norte,3\n")
	require.NoError(t, err)

	products, err := parseProducts(transform.NewReader(strings.NewReader(encoded), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Papelería fina", products[0].Name)
	assert.Equal(t, "Útiles", products[0].Category)
}
