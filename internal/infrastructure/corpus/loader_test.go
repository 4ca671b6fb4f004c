package corpus

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadCSVCorpus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "Fake.csv",
		"title,text,subject,date\n"+
			"Shocking Discovery,You wont believe this miracle cure,news,2020-01-01\n"+
			"Secret Revealed,Celebrity scandal exposed by insiders,news,2020-01-02\n")
	writeFile(t, dir, "True.csv",
		"title,text,subject,date\n"+
			"Budget Approved,Senate committee approved the annual budget,politics,2020-01-01\n")

	docs, err := NewDirectorySource(dir, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	var fake, real int
	for _, d := range docs {
		switch d.Label {
		case domain.LabelFake:
			fake++
		case domain.LabelReal:
			real++
		}
	}
	assert.Equal(t, 2, fake)
	assert.Equal(t, 1, real)
}

func TestLoadCSVMissingColumns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "fake.csv", "id,score\n1,0.5\n")

	_, err := NewDirectorySource(dir, nil).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no title or text column")
}

func TestLoadSkipsUnlabeledAndBlankRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "fake.csv", "title,text\nHeadline,Some body\n,,\n")
	writeFile(t, dir, "notes.csv", "title,text\nIgnored,Entirely\n")
	writeFile(t, dir, "readme.txt", "not a corpus file")

	docs, err := NewDirectorySource(dir, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Headline", docs[0].Title)
	assert.Equal(t, domain.LabelFake, docs[0].Label)
}

func TestLoadZippedCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "Fake.csv.zip")

	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("Fake.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("title,text\nZipped Headline,Zipped article body\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	docs, err := NewDirectorySource(dir, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Zipped Headline", docs[0].Title)
	assert.Equal(t, "Zipped article body", docs[0].Text)
	assert.Equal(t, domain.LabelFake, docs[0].Label)
}

func TestLoadHTMLArticle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real_article.html", `<!DOCTYPE html>
<html>
<head><title>Infrastructure Bill Passes</title><style>p{color:red}</style></head>
<body>
<nav>Home | News</nav>
<article>
<h1>Infrastructure Bill Passes</h1>
<p>The senate passed the infrastructure bill on Tuesday.</p>
<p>Funding covers roads and broadband.</p>
<script>trackPageView()</script>
</article>
<footer>Copyright</footer>
</body>
</html>`)

	docs, err := NewDirectorySource(dir, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "Infrastructure Bill Passes", docs[0].Title)
	assert.Contains(t, docs[0].Text, "senate passed the infrastructure bill")
	assert.Contains(t, docs[0].Text, "roads and broadband")
	assert.NotContains(t, docs[0].Text, "trackPageView")
	assert.NotContains(t, docs[0].Text, "Home | News")
	assert.Equal(t, domain.LabelReal, docs[0].Label)
}

func TestLoadMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewDirectorySource(filepath.Join(t.TempDir(), "absent"), nil).Load(context.Background())
	assert.Error(t, err)
}
