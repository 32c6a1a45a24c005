// Package build orchestrates the full static site generation pipeline.
// It coordinates content discovery, markdown rendering, template execution,
// and file output to produce a complete static site.
package build

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forgecore/forge/internal/cache"
	"github.com/forgecore/forge/internal/config"
	"github.com/forgecore/forge/internal/content"
	"github.com/forgecore/forge/internal/feed"
	"github.com/forgecore/forge/internal/ferrors"
	"github.com/forgecore/forge/internal/navtree"
	"github.com/forgecore/forge/internal/output"
	"github.com/forgecore/forge/internal/search"
	"github.com/forgecore/forge/internal/seo"
	tmpl "github.com/forgecore/forge/internal/template"
)

// BuildOptions controls the behaviour of the build pipeline.
type BuildOptions struct {
	IncludeDrafts  bool
	IncludeFuture  bool
	IncludeExpired bool
	OutputDir      string
	Verbose        bool
	Minify         bool
	BaseURL        string
	ProjectRoot    string
}

// BuildResult contains statistics about the completed build.
type BuildResult struct {
	PagesRendered  int
	FilesWritten   int
	FilesCopied    int
	StaticFiles    int
	Duration       time.Duration
	OutputSize     int64
	Pages          []string // URL paths of all rendered pages
}

// Builder coordinates the full static site generation pipeline.
type Builder struct {
	config  *config.SiteConfig
	options BuildOptions

	// navTreeCache memoizes built navigation trees across repeated calls to
	// Build on the same Builder (the dev server keeps one Builder alive for
	// the life of the process), invalidated when a structural change is
	// detected anywhere in the site.
	navTreeCache *navtree.Cache
}

// NewBuilder creates a new Builder with the given site configuration and options.
func NewBuilder(cfg *config.SiteConfig, opts BuildOptions) *Builder {
	return &Builder{
		config:       cfg,
		options:      opts,
		navTreeCache: navtree.NewCache(),
	}
}

// Build executes the full build pipeline and returns a BuildResult summarizing
// what was generated. The pipeline steps are:
//  1. Ensure the output directory exists (it is not wiped)
//  2. Discover content files
//  3. Filter pages (drafts, future, expired)
//  4. Render markdown in parallel
//  5. Build taxonomy maps
//  6. Sort pages and set navigation links
//  7. Create template engine
//  8-9. Render pages to HTML in parallel
//  10. Write HTML files (and 404.html)
//  11. Copy static files and build Tailwind CSS
//  12. Copy page bundle assets
//  13. Generate ancillary files (sitemap, robots, feeds, search index, aliases)
func (b *Builder) Build() (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{}

	projectRoot := b.options.ProjectRoot
	if projectRoot == "" {
		var err error
		projectRoot, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining project root: %w", err)
		}
	}

	// Determine output directory.
	outputDir := b.options.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(projectRoot, "public")
	}
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(projectRoot, outputDir)
	}

	// Determine content directory.
	contentDir := filepath.Join(projectRoot, "content")

	// Determine base URL.
	baseURL := b.options.BaseURL
	if baseURL == "" {
		baseURL = b.config.BaseURL
	}

	// Step 1: Ensure the output directory exists. It is intentionally not wiped
	// here: Step 10 skips rewriting pages whose rendered output is unchanged
	// since the previous build, and stale files left over from content that no
	// longer exists are removed at the end by PruneOrphans instead, so
	// unrelated files keep their mtimes across builds.
	writer, err := output.NewWriter(outputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output writer: %w", err)
	}

	session := ferrors.NewSession()
	stateDir := filepath.Join(projectRoot, ".forge")
	buildCache, cacheHit := cache.Load(stateDir)
	if !cacheHit && b.options.Verbose {
		fmt.Fprintln(os.Stderr, "no usable build cache found, starting a full build")
	}

	// Step 2: Discover content.
	pages, err := content.Discover(contentDir, b.config)
	if err != nil {
		return nil, fmt.Errorf("discovering content: %w", err)
	}

	// Set absolute permalinks.
	for _, p := range pages {
		p.Permalink = strings.TrimRight(baseURL, "/") + p.URL
	}

	// Load data files from data/ directory.
	dataDir := filepath.Join(projectRoot, "data")
	dataFiles, err := content.LoadDataFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("loading data files: %w", err)
	}

	// Step 3: Filter pages based on options.
	if !b.options.IncludeDrafts {
		pages = content.FilterDrafts(pages)
	}
	if !b.options.IncludeFuture {
		pages = content.FilterFuture(pages)
	}
	if !b.options.IncludeExpired {
		pages = content.FilterExpired(pages)
	}

	// Inject a virtual home page if none was discovered (i.e., no content/_index.md).
	// This ensures public/index.html is always generated.
	if !hasHomePage(pages) {
		pages = append(pages, &content.Page{
			Type: content.PageTypeHome,
			URL:  "/",
		})
	}

	// Theme/layout paths are resolved up front so the template fingerprint
	// pass below and the engine created in Step 7 agree on the same files.
	themeName := b.config.Theme
	if themeName == "" {
		themeName = "default"
	}
	themePath := filepath.Join(projectRoot, "themes", themeName)
	userLayoutPath := filepath.Join(projectRoot, "layouts")

	templateFPs, err := fingerprintTemplates(themePath, userLayoutPath)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting templates: %w", err)
	}
	for name, fp := range templateFPs {
		if old, ok := buildCache.TemplateFingerprints[name]; !ok || old != fp {
			buildCache.InvalidateDependents(name)
		}
	}
	buildCache.TemplateFingerprints = templateFPs

	// Step 4: Render markdown in parallel, skipping any page whose cached
	// fingerprint still matches (its Content/TableOfContents are rehydrated
	// from the cache instead of being re-parsed).
	mdRenderer := content.NewMarkdownRenderer()
	numWorkers := b.config.Build.Workers
	if numWorkers <= 0 {
		numWorkers = defaultWorkerCount()
	}

	liveSources := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		if p.SourcePath != "" {
			liveSources[p.SourcePath] = struct{}{}
		}
	}

	// buildCache is a plain map underneath with no locking of its own (see
	// internal/cache), so every access from this worker pool goes through
	// cacheMu rather than relying on per-key independence, which Go's map
	// implementation doesn't provide.
	var cacheMu sync.Mutex
	var structuralChanged bool
	var failedMu sync.Mutex
	failedPages := make(map[*content.Page]bool)

	err = renderParallel(pages, numWorkers, func(p *content.Page) error {
		structural := cache.StructuralFields{
			Title:   p.Title,
			Weight:  p.Weight,
			Icon:    p.Icon,
			Section: p.Section,
			Version: p.Version,
			Tags:    p.Tags,
		}

		if p.SourcePath != "" {
			cacheMu.Lock()
			prev, hadEntry := buildCache.Entries[p.SourcePath]
			if !hadEntry || cache.DetectStructuralChange(prev.Structural, structural) {
				structuralChanged = true
			}
			fp := cache.ComputeFingerprint([]byte(p.RawContent), nil)
			needsRender := buildCache.NeedsRender(p.SourcePath, fp)
			cacheMu.Unlock()

			if !needsRender {
				p.Content = prev.Rendered.Content
				p.TableOfContents = prev.Rendered.TableOfContents
				return nil
			}

			htmlContent, tocHTML, violations, err := mdRenderer.RenderWithTOCAndViolations([]byte(p.RawContent))
			if err != nil {
				cacheMu.Lock()
				buildCache.RecordFailure(p.SourcePath)
				cacheMu.Unlock()
				session.Warn(ferrors.New(ferrors.PMarkdownFailed, p.SourcePath, err))
				failedMu.Lock()
				failedPages[p] = true
				failedMu.Unlock()
				return fmt.Errorf("rendering markdown for %s: %w", p.SourcePath, err)
			}
			p.Content = string(htmlContent)
			p.TableOfContents = string(tocHTML)
			reportViolations(session, b.config.Build, p.SourcePath, violations)
			cacheMu.Lock()
			buildCache.RecordSource(p.SourcePath, fp, structural, cache.RenderedSnapshot{
				Content:         p.Content,
				TableOfContents: p.TableOfContents,
			})
			cacheMu.Unlock()
			return nil
		}

		// Virtual pages (home/taxonomy/section list pages synthesized in
		// memory) have no source file and so are never cached.
		htmlContent, tocHTML, violations, err := mdRenderer.RenderWithTOCAndViolations([]byte(p.RawContent))
		if err != nil {
			session.Warn(ferrors.New(ferrors.PMarkdownFailed, p.URL, err))
			failedMu.Lock()
			failedPages[p] = true
			failedMu.Unlock()
			return fmt.Errorf("rendering markdown for %s: %w", p.URL, err)
		}
		p.Content = string(htmlContent)
		p.TableOfContents = string(tocHTML)
		reportViolations(session, b.config.Build, p.URL, violations)
		return nil
	})
	if err != nil && b.options.Verbose {
		fmt.Fprintf(os.Stderr, "warning: some pages failed to render: %v\n", err)
	}
	if len(failedPages) > 0 {
		pages = slices.DeleteFunc(pages, func(p *content.Page) bool { return failedPages[p] })
	}
	if session.HasFatal() {
		buildCache.Prune(liveSources)
		if saveErr := cache.Save(stateDir, buildCache); saveErr != nil && b.options.Verbose {
			fmt.Fprintf(os.Stderr, "warning: could not persist build cache: %v\n", saveErr)
		}
		return nil, fmt.Errorf("build aborted: strict-mode directive contract violations were detected")
	}

	// Step 4b: Generate summaries, word counts, and reading times.
	for _, p := range pages {
		// Calculate word count and reading time from plain text content.
		plainText := content.StripHTMLTags(p.Content)
		p.WordCount = content.CalculateWordCount(plainText)
		p.ReadingTime = content.CalculateReadingTime(plainText)

		// Generate summary if not already set from frontmatter.
		if p.Summary == "" {
			p.Summary = content.GenerateSummary(p.RawContent, p.Content, 300)
		}
	}

	// Step 5: Build taxonomy maps.
	tags, categories := buildTaxonomyMaps(pages)

	// Step 5b: Generate taxonomy virtual pages.
	if b.config.Taxonomies != nil {
		taxonomies := content.BuildTaxonomies(pages, b.config.Taxonomies)
		taxPages := content.GenerateTaxonomyPages(taxonomies)
		// Set permalinks on taxonomy pages.
		for _, tp := range taxPages {
			tp.Permalink = strings.TrimRight(baseURL, "/") + tp.URL
		}
		pages = append(pages, taxPages...)
	}

	// Step 6: Sort pages by date (newest first) and set prev/next links.
	content.SortByDate(pages, false)
	setSectionNavigation(pages)

	// Step 7: Create template engine.
	engine, err := tmpl.NewEngine(themePath, userLayoutPath)
	if err != nil {
		return nil, fmt.Errorf("creating template engine: %w", err)
	}

	// Build site context for templates.
	siteCtx := b.buildSiteContext(pages, tags, categories, baseURL, dataFiles)

	// Best-effort nav tree: built from the section/taxonomy-aware Site model
	// so `.Site.NavTree` is available to templates even though the rest of
	// this pipeline still works off the flat page list above. The tree is
	// memoized on the Builder and only rebuilt when a structural change was
	// detected above, so the dev server's repeated rebuilds reuse it.
	if navSite, nerr := content.BuildSite(contentDir, b.config, &content.TaxonomySource{Taxonomies: b.config.Taxonomies}); nerr == nil {
		if structuralChanged {
			b.navTreeCache.Invalidate("")
		}
		siteCtx.NavTree = b.navTreeCache.Get(navSite, "")
	} else if b.options.Verbose {
		fmt.Fprintf(os.Stderr, "warning: could not build navigation tree: %v\n", nerr)
	}

	// Build page contexts for all pages.
	pageContextMap := b.buildPageContexts(pages, siteCtx)

	// Step 8 & 9: Render pages to HTML in parallel and collect results. A
	// page whose template fails to execute is isolated: it's logged as a
	// warning and simply omitted from results, never aborting the pool or
	// the pages rendered around it.
	type renderResult struct {
		url        string
		data       []byte
		sourcePath string
		version    string
		deps       []string
	}
	var mu sync.Mutex
	var results []renderResult

	err = renderParallel(pages, numWorkers, func(p *content.Page) error {
		ctx := pageContextMap[p]
		if ctx == nil {
			return fmt.Errorf("no context for page %s", p.SourcePath)
		}

		// Resolve template.
		templateName := engine.Resolve(p.Type.String(), p.Section, p.Layout)
		if templateName == "" {
			// Use a fallback: wrap content in baseof if available, or output raw content.
			templateName = engine.Resolve("single", "_default", "")
			if templateName == "" {
				// No template found at all, use raw rendered content.
				session.Warn(ferrors.New(ferrors.TNoTemplate, p.SourcePath, fmt.Errorf("no template resolved for type %q", p.Type.String())))
				mu.Lock()
				results = append(results, renderResult{url: p.URL, data: []byte(p.Content), sourcePath: p.SourcePath, version: p.Version})
				mu.Unlock()
				return nil
			}
		}
		p.Deps.AddTemplate(templateName)

		rendered, err := engine.Execute(templateName, ctx)
		if err != nil {
			session.Warn(ferrors.New(ferrors.TExecFailed, p.SourcePath, err))
			return fmt.Errorf("executing template %s for %s: %w", templateName, p.SourcePath, err)
		}

		mu.Lock()
		results = append(results, renderResult{
			url:        p.URL,
			data:       rendered,
			sourcePath: p.SourcePath,
			version:    p.Version,
			deps:       append([]string(nil), p.Deps.Templates...),
		})
		mu.Unlock()
		return nil
	})
	if err != nil && b.options.Verbose {
		fmt.Fprintf(os.Stderr, "warning: some pages failed to render their template: %v\n", err)
	}

	// Step 10: Write HTML files, skipping pages whose output is byte-identical
	// to the last build (keeps mtimes stable for rsync/CDN-based deploys).
	versionManifest := make(map[string][]string)
	for _, r := range results {
		outFp := cache.ComputeFingerprint128(r.data)
		cacheKey := r.sourcePath
		if cacheKey == "" {
			cacheKey = r.url
		}
		prev, hadEntry := buildCache.Entries[cacheKey]

		srcFp := cache.ComputeFingerprint(r.data, nil)
		if hadEntry {
			srcFp = prev.Fingerprint
		}

		if hadEntry && prev.Status == cache.StatusOK && prev.OutputPath != "" && prev.OutputFingerprint == outFp {
			writer.MarkLive(output.URLToFilePath(r.url))
			result.Pages = append(result.Pages, r.url)
			buildCache.Record(cacheKey, srcFp, outFp, r.url, r.deps)
			if r.version != "" {
				versionManifest[r.version] = append(versionManifest[r.version], r.url)
			}
			continue
		}
		if _, err := writer.WritePage(r.url, r.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", r.url, err)
		}
		buildCache.Record(cacheKey, srcFp, outFp, r.url, r.deps)
		result.FilesWritten++
		result.Pages = append(result.Pages, r.url)
		if r.version != "" {
			versionManifest[r.version] = append(versionManifest[r.version], r.url)
		}
	}
	result.PagesRendered = len(results)

	buildCache.Prune(liveSources)
	if err := cache.Save(stateDir, buildCache); err != nil && b.options.Verbose {
		fmt.Fprintf(os.Stderr, "warning: could not persist build cache: %v\n", err)
	}
	if warnings, fatal := session.Summary(); warnings > 0 || fatal > 0 {
		fmt.Fprintf(os.Stderr, "build finished with %d warning(s), %d fatal error(s)\n", warnings, fatal)
	}

	// Step 10b: Generate 404.html using theme template if available.
	notFoundTemplate := engine.Resolve("404", "", "")
	if notFoundTemplate != "" {
		notFoundCtx := &tmpl.PageContext{
			Title: "Page Not Found",
			Site:  siteCtx,
		}
		rendered404, err := engine.Execute(notFoundTemplate, notFoundCtx)
		if err != nil {
			return nil, fmt.Errorf("rendering 404 page: %w", err)
		}
		if err := writer.WriteFile("404.html", rendered404); err != nil {
			return nil, fmt.Errorf("writing 404.html: %w", err)
		}
		result.FilesWritten++
	}

	// Step 11: Copy static files from theme and site static directories.
	themeStaticDir := filepath.Join(themePath, "static")
	siteStaticDir := filepath.Join(projectRoot, "static")

	if info, err := os.Stat(themeStaticDir); err == nil && info.IsDir() {
		copied, err := copyDirCounting(writer, themeStaticDir)
		if err != nil {
			return nil, fmt.Errorf("copying theme static files: %w", err)
		}
		result.FilesCopied += copied
	}

	if info, err := os.Stat(siteStaticDir); err == nil && info.IsDir() {
		copied, err := copyDirCounting(writer, siteStaticDir)
		if err != nil {
			return nil, fmt.Errorf("copying site static files: %w", err)
		}
		result.FilesCopied += copied
	}

	// Step 11: Build Tailwind CSS.
	cssInput := filepath.Join(themePath, "static", "css", "globals.css")
	if _, err := os.Stat(cssInput); err == nil {
		cssOutput := filepath.Join(outputDir, "css", "style.css")
		contentPaths := []string{
			filepath.Join(themePath, "layouts", "**", "*.html"),
			filepath.Join(projectRoot, "layouts", "**", "*.html"),
			filepath.Join(contentDir, "**", "*.md"),
		}
		tb := &TailwindBuilder{}
		twConfig := filepath.Join(themePath, "tailwind.config.js")
		if _, err := os.Stat(twConfig); err == nil {
			tb.ConfigPath = twConfig
		}
		if _, binErr := tb.EnsureBinary(TailwindVersion); binErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not download Tailwind CSS binary: %v (skipping CSS compilation)\n", binErr)
		} else {
			if err := os.MkdirAll(filepath.Dir(cssOutput), 0o755); err != nil {
				return nil, fmt.Errorf("creating CSS output directory: %w", err)
			}
			if err := tb.Build(cssInput, cssOutput, contentPaths); err != nil {
				return nil, fmt.Errorf("building Tailwind CSS: %w", err)
			}
			writer.MarkLive("css/style.css")
			result.StaticFiles++
		}
	}

	// Step 12: Copy page bundle assets.
	for _, p := range pages {
		if !p.IsBundle || len(p.BundleFiles) == 0 {
			continue
		}
		// Determine output directory for this page's assets.
		pageOutputRel := strings.TrimPrefix(p.URL, "/")
		for _, assetName := range p.BundleFiles {
			src := filepath.Join(p.BundleDir, assetName)
			relDst := filepath.Join(pageOutputRel, assetName)
			if err := writer.CopyFile(src, relDst); err != nil {
				return nil, fmt.Errorf("copying bundle asset %s: %w", src, err)
			}
			result.FilesCopied++
		}
	}

	// Step 13: Generate ancillary files (sitemap, robots, feeds, search index, aliases).

	// Collect non-draft pages for sitemap and search.
	var nonDraftPages []*content.Page
	for _, p := range pages {
		if !p.Draft {
			nonDraftPages = append(nonDraftPages, p)
		}
	}

	// Generate sitemap.xml. Pages that share the same section+slug across
	// different Lang values are translations of one another, so each gets an
	// hreflang alternate pointing at its siblings.
	translationGroups := make(map[string][]*content.Page)
	for _, p := range nonDraftPages {
		if p.Lang == "" {
			continue
		}
		key := p.Section + "/" + p.Slug
		translationGroups[key] = append(translationGroups[key], p)
	}

	sitemapEntries := make([]seo.SitemapEntry, 0, len(nonDraftPages))
	for _, p := range nonDraftPages {
		entry := seo.SitemapEntry{
			URL:     p.Permalink,
			Lastmod: p.Lastmod,
		}
		if siblings := translationGroups[p.Section+"/"+p.Slug]; len(siblings) > 1 {
			for _, sib := range siblings {
				entry.Alternates = append(entry.Alternates, seo.SitemapAlternate{
					Locale: sib.Lang,
					URL:    sib.Permalink,
				})
			}
		}
		sitemapEntries = append(sitemapEntries, entry)
	}
	sitemapData, err := seo.GenerateSitemap(sitemapEntries)
	if err != nil {
		return nil, fmt.Errorf("generating sitemap: %w", err)
	}
	if err := writer.WriteFile("sitemap.xml", sitemapData); err != nil {
		return nil, fmt.Errorf("writing sitemap.xml: %w", err)
	}
	result.StaticFiles++

	// Generate robots.txt.
	sitemapURL := strings.TrimRight(baseURL, "/") + "/sitemap.xml"
	robotsData := seo.GenerateRobotsTxt(sitemapURL)
	if err := writer.WriteFile("robots.txt", robotsData); err != nil {
		return nil, fmt.Errorf("writing robots.txt: %w", err)
	}
	result.StaticFiles++

	// Collect blog posts for feeds (non-draft, section == "blog" or configured sections, sorted by date desc).
	feedSections := b.config.Feeds.Sections
	if len(feedSections) == 0 {
		feedSections = []string{"blog"}
	}
	var feedPages []*content.Page
	for _, p := range nonDraftPages {
		if slices.Contains(feedSections, p.Section) {
			feedPages = append(feedPages, p)
		}
	}
	sort.SliceStable(feedPages, func(i, j int) bool {
		return feedPages[i].Date.After(feedPages[j].Date)
	})

	// Convert pages to FeedItems.
	feedItems := make([]feed.FeedItem, 0, len(feedPages))
	for _, p := range feedPages {
		feedItems = append(feedItems, feed.FeedItem{
			Title:       p.Title,
			Link:        p.Permalink,
			Description: p.Summary,
			Content:     p.Content,
			Author:      p.Author,
			PubDate:     p.Date,
			GUID:        p.Permalink,
			Categories:  append(p.Tags, p.Categories...),
		})
	}

	feedOpts := feed.FeedOptions{
		Title:       b.config.Title,
		Description: b.config.Description,
		Link:        strings.TrimRight(baseURL, "/"),
		Language:    b.config.Language,
		Author:      b.config.Author.Name,
		MaxItems:    b.config.Feeds.Limit,
		FullContent: b.config.Feeds.FullContent,
	}

	// Generate RSS feed (index.xml).
	if b.config.Feeds.RSS {
		feedOpts.FeedLink = strings.TrimRight(baseURL, "/") + "/index.xml"
		rssData, err := feed.GenerateRSS(feedItems, feedOpts)
		if err != nil {
			return nil, fmt.Errorf("generating RSS feed: %w", err)
		}
		if err := writer.WriteFile("index.xml", rssData); err != nil {
			return nil, fmt.Errorf("writing index.xml: %w", err)
		}
		result.StaticFiles++
	}

	// Generate Atom feed (atom.xml).
	if b.config.Feeds.Atom {
		feedOpts.FeedLink = strings.TrimRight(baseURL, "/") + "/atom.xml"
		atomData, err := feed.GenerateAtom(feedItems, feedOpts)
		if err != nil {
			return nil, fmt.Errorf("generating Atom feed: %w", err)
		}
		if err := writer.WriteFile("atom.xml", atomData); err != nil {
			return nil, fmt.Errorf("writing atom.xml: %w", err)
		}
		result.StaticFiles++
	}

	// Generate search index (search-index.json).
	if b.config.Search.Enabled {
		maxContentLen := b.config.Search.ContentLength
		if maxContentLen <= 0 {
			maxContentLen = 5000
		}
		indexEntries := make([]search.IndexEntry, 0, len(nonDraftPages))
		for _, p := range nonDraftPages {
			strippedContent := search.StripHTML(p.Content)
			indexEntries = append(indexEntries, search.IndexEntry{
				Title:      p.Title,
				URL:        p.URL,
				Tags:       p.Tags,
				Categories: p.Categories,
				Summary:    content.StripHTMLTags(p.Summary),
				Content:    strippedContent,
			})
		}
		searchData, err := search.GenerateIndex(indexEntries, maxContentLen)
		if err != nil {
			return nil, fmt.Errorf("generating search index: %w", err)
		}
		if err := writer.WriteFile("search-index.json", searchData); err != nil {
			return nil, fmt.Errorf("writing search-index.json: %w", err)
		}
		result.StaticFiles++
	}

	// Generate alias redirect pages: a meta-refresh HTML page per alias for
	// browsers, plus a plain-text _redirects table for hosts that honor it
	// natively.
	var aliases []AliasPage
	var redirects []output.Redirect
	for _, p := range pages {
		for _, alias := range p.Aliases {
			aliases = append(aliases, AliasPage{
				AliasURL:     alias,
				CanonicalURL: p.URL,
			})
			redirects = append(redirects, output.Redirect{From: alias, To: p.URL})
		}
	}
	if len(aliases) > 0 {
		aliasFiles := GenerateAliasPages(aliases)
		for filePath, htmlData := range aliasFiles {
			if err := writer.WriteFile(filePath, htmlData); err != nil {
				return nil, fmt.Errorf("writing alias file %s: %w", filePath, err)
			}
			result.StaticFiles++
		}
		if err := writer.WriteRedirects(redirects); err != nil {
			return nil, fmt.Errorf("writing _redirects: %w", err)
		}
	}

	if err := writer.WriteVersionManifest(versionManifest); err != nil {
		return nil, fmt.Errorf("writing version manifest: %w", err)
	}
	if err := writer.WriteAssetManifest(); err != nil {
		return nil, fmt.Errorf("writing asset manifest: %w", err)
	}
	if b.config.Build.PruneOrphans {
		if _, err := writer.PruneOrphans(); err != nil {
			return nil, fmt.Errorf("pruning orphaned output files: %w", err)
		}
	}

	// Calculate output size.
	size, err := DirSize(outputDir)
	if err != nil {
		return nil, fmt.Errorf("calculating output size: %w", err)
	}
	result.OutputSize = size
	result.Duration = time.Since(start)

	return result, nil
}

// reportViolations records directive contract violations found while
// rendering a page's markdown, gated by the site's contract-validation
// config: ValidateContracts is the on/off switch, and StrictMode decides
// whether a violation only warns or aborts the build.
func reportViolations(session *ferrors.Session, cfg config.BuildConfig, file string, violations []error) {
	if !cfg.ValidateContracts {
		return
	}
	for _, v := range violations {
		ferr := ferrors.New(ferrors.PDirectiveBadNest, file, v)
		if cfg.StrictMode {
			session.Fail(ferr)
		} else {
			session.Warn(ferr)
		}
	}
}

// fingerprintTemplates walks the theme's layouts directory and the user
// layout directory (user files overriding theme files of the same relative
// path, mirroring template.Engine's own overlay rule) and returns a content
// fingerprint per template name, used to detect template changes between
// builds so their dependent pages can be invalidated.
func fingerprintTemplates(themePath, userLayoutPath string) (map[string]cache.Fingerprint, error) {
	fps := make(map[string]cache.Fingerprint)

	collect := func(dir string) error {
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".html" {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			fps[filepath.ToSlash(rel)] = cache.ComputeFingerprint(raw, nil)
			return nil
		})
	}

	if err := collect(filepath.Join(themePath, "layouts")); err != nil {
		return nil, err
	}
	if err := collect(userLayoutPath); err != nil {
		return nil, err
	}
	return fps, nil
}

// copyDirCounting copies the contents of src into the writer's output root,
// preserving src's relative layout, and returns the number of files copied.
func copyDirCounting(writer *output.Writer, src string) (int, error) {
	count := 0
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if err := writer.CopyFile(path, rel); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// buildSiteContext creates a SiteContext for template rendering.
func (b *Builder) buildSiteContext(
	pages []*content.Page,
	tags map[string][]*content.Page,
	categories map[string][]*content.Page,
	baseURL string,
	dataFiles map[string]any,
) *tmpl.SiteContext {
	// Build menu items.
	menuItems := make([]tmpl.MenuItemContext, len(b.config.Menu.Main))
	for i, item := range b.config.Menu.Main {
		menuItems[i] = tmpl.MenuItemContext{
			Name:   item.Name,
			URL:    item.URL,
			Weight: item.Weight,
		}
	}

	// Build section map.
	sections := make(map[string][]*tmpl.PageContext)

	// Build page contexts for site.
	sitePages := make([]*tmpl.PageContext, 0, len(pages))
	for _, p := range pages {
		pc := pageToContext(p, nil, b.config.Params) // site will be set after
		sitePages = append(sitePages, pc)
		if p.Section != "" {
			sections[p.Section] = append(sections[p.Section], pc)
		}
	}

	// Build taxonomy contexts.
	taxonomies := make(map[string]map[string][]*tmpl.PageContext)
	if len(tags) > 0 {
		tagMap := make(map[string][]*tmpl.PageContext)
		for term, tagPages := range tags {
			for _, tp := range tagPages {
				tagMap[term] = append(tagMap[term], pageToContext(tp, nil, b.config.Params))
			}
		}
		taxonomies["tags"] = tagMap
	}
	if len(categories) > 0 {
		catMap := make(map[string][]*tmpl.PageContext)
		for term, catPages := range categories {
			for _, cp := range catPages {
				catMap[term] = append(catMap[term], pageToContext(cp, nil, b.config.Params))
			}
		}
		taxonomies["categories"] = catMap
	}

	return &tmpl.SiteContext{
		Title:       b.config.Title,
		Description: b.config.Description,
		BaseURL:     baseURL,
		Language:    b.config.Language,
		Author: tmpl.AuthorContext{
			Name:   b.config.Author.Name,
			Email:  b.config.Author.Email,
			Bio:    b.config.Author.Bio,
			Avatar: b.config.Author.Avatar,
			Social: tmpl.SocialContext{
				GitHub:   b.config.Author.Social.GitHub,
				LinkedIn: b.config.Author.Social.LinkedIn,
				Twitter:  b.config.Author.Social.Twitter,
				Mastodon: b.config.Author.Social.Mastodon,
				Email:    b.config.Author.Social.Email,
			},
		},
		Menu:       menuItems,
		Params:     tmpl.NewParamsView(b.config.Params),
		Data:       dataFiles,
		Pages:      sitePages,
		Sections:   sections,
		Taxonomies: taxonomies,
		BuildDate:  time.Now(),
	}
}

// buildPageContexts creates a map from Page to PageContext for all pages.
func (b *Builder) buildPageContexts(pages []*content.Page, siteCtx *tmpl.SiteContext) map[*content.Page]*tmpl.PageContext {
	m := make(map[*content.Page]*tmpl.PageContext, len(pages))
	for _, p := range pages {
		ctx := pageToContext(p, siteCtx, b.config.Params)
		m[p] = ctx
	}

	// Wire up prev/next navigation on page contexts.
	for _, p := range pages {
		ctx := m[p]
		if p.PrevPage != nil {
			if prevCtx, ok := m[p.PrevPage]; ok {
				ctx.PrevPage = prevCtx
			}
		}
		if p.NextPage != nil {
			if nextCtx, ok := m[p.NextPage]; ok {
				ctx.NextPage = nextCtx
			}
		}
	}
	return m
}

// hasHomePage reports whether any page in the slice has PageTypeHome.
func hasHomePage(pages []*content.Page) bool {
	for _, p := range pages {
		if p.Type == content.PageTypeHome {
			return true
		}
	}
	return false
}

// pageToContext converts a content.Page to a template.PageContext. siteParams
// is consulted as a fallback layer so `.Params.x` resolves a site-wide value
// when the page itself doesn't set x.
func pageToContext(p *content.Page, siteCtx *tmpl.SiteContext, siteParams map[string]any) *tmpl.PageContext {
	ctx := &tmpl.PageContext{
		Title:           p.Title,
		Description:     p.Description,
		Content:         template.HTML(p.Content),
		Summary:         template.HTML(p.Summary),
		Date:            p.Date,
		Lastmod:         p.Lastmod,
		Draft:           p.Draft,
		Slug:            p.Slug,
		URL:             p.URL,
		Permalink:       p.Permalink,
		ReadingTime:     p.ReadingTime,
		WordCount:       p.WordCount,
		Tags:            p.Tags,
		Categories:      p.Categories,
		Series:          p.Series,
		Params:          tmpl.NewParamsView(p.Params, siteParams),
		TableOfContents: template.HTML(p.TableOfContents),
		Section:         p.Section,
		Type:            p.Type.String(),
		Version:         p.Version,
		Lang:            p.Lang,
		Icon:            p.Icon,
		Site:            siteCtx,
	}
	if term, ok := p.Params["term"].(string); ok {
		ctx.Tag = term
	}

	if p.Cover != nil {
		ctx.Cover = &tmpl.CoverImage{
			Image:   p.Cover.Image,
			Alt:     p.Cover.Alt,
			Caption: p.Cover.Caption,
		}
	}

	return ctx
}
