package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCSV = "\ufeffname,Description,Uses,Example pests controlled,Ejemplos de plagas controladas,Ejemplos de aplicaciones\n" +
	"Neem,insecticida  natural,control de pulgones,aphids,pulgones; mosca blanca,tomate\n" +
	"Bacillus thuringiensis,bacteria entomopatógena,control de orugas,caterpillars,gusano cogollero,maíz\n" +
	"Beauveria bassiana,hongo entomopatógeno,control de trips,thrips,trips; picudo,café\n" +
	"Trichoderma,hongo antagonista,control de hongos del suelo,,,fresa\n" +
	"Spinosad,,control de minadores,leafminers,minador,\n"

// writeSample writes sampleCSV under a temp dir and returns its path.
func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "biopesticides.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}
