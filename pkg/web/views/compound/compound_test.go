package compound

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/pkg/common/code"
	impl "github.com/scienceol/molbank/pkg/core/compound/compound"
	"github.com/scienceol/molbank/pkg/repo/pubchem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/pug/compound/name/missing/property/"+
			"MolecularFormula,MolecularWeight,InChIKey,IUPACName,XLogP,ExactMass,MonoisotopicMass,TPSA,"+
			"Complexity,Charge,HBondDonorCount,HBondAcceptorCount,RotatableBondCount,HeavyAtomCount/JSON" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"PropertyTable":{"Properties":[{"MolecularFormula":"C8H10N4O2",
"MolecularWeight":"194.19","XLogP":-0.1,"HBondDonorCount":0,"HBondAcceptorCount":3}]}}`))
	}))
	defer upstream.Close()

	h := NewCompoundHandle(impl.NewCompoundWithRepo(pubchem.NewPubChemRepoWithAddr(upstream.URL)))
	g := gin.New()
	g.GET("/api/v1/compound/:name", h.Lookup)

	get := func(name string) map[string]any {
		w := httptest.NewRecorder()
		g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/compound/"+name, nil))
		require.Equal(t, http.StatusOK, w.Code)
		out := map[string]any{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}

	out := get("caffeine")
	assert.EqualValues(t, 0, out["code"])
	data := out["data"].(map[string]any)
	pred := data["prediction"].(map[string]any)
	assert.EqualValues(t, 4, pred["drugLikenessScore"])
	assert.Equal(t, "High", pred["bioavailability"])
	assert.Equal(t, "Very High", pred["solubility"])

	out = get("missing")
	assert.EqualValues(t, code.CompoundNotFoundErr.Int(), out["code"])
	assert.Equal(t, "Compound not found", out["error"].(map[string]any)["msg"])
}
