package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"pmp-reports/internal/render"
)

// Slide geometry in EMU (16:9)
const (
	slideCX       = 12192000
	slideCY       = 6858000
	headerCY      = 1143000
	bodyX         = 457200
	bodyY         = 1371600
	bodyCX        = 11277600
	bodyCY        = 5029200
	linesPerSlide = 16
)

const (
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDoc   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCoreProps   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtProps    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

type run struct {
	text   string
	bold   bool
	italic bool
	size   int // hundredths of a point
	color  rgb
}

type paragraph struct {
	runs  []run
	level int
}

// block paragraphs kept on the same slide
type block []paragraph

type pptxPart struct {
	name string
	body string
}

type pptxSlide struct {
	title    string
	subtitle string
	body     []paragraph
}

func hexColor(c rgb) string { return fmt.Sprintf("%02X%02X%02X", c.r, c.g, c.b) }

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func labelled(label, value string, level int) paragraph {
	return paragraph{level: level, runs: []run{
		{text: label + ": ", bold: true, size: 1400, color: colorMuted},
		{text: value, size: 1400, color: colorInk},
	}}
}

func viewBlocks(v render.View) []block {
	var out []block
	if v.Hero != nil {
		b := block{labelled("Featured picture", firstNonBlank(v.Hero.Caption, v.Hero.ImageURL), 0)}
		if v.Hero.Caption != "" {
			b = append(b, labelled("Image", v.Hero.ImageURL, 1))
		}
		out = append(out, b)
	}
	for _, f := range v.Summary {
		out = append(out, block{labelled(f.Label, f.Value, 0)})
	}
	for _, c := range v.Cards {
		title := paragraph{runs: []run{{text: c.Title, bold: true, size: 1600, color: colorInk}}}
		if c.Badge != nil {
			title.runs = append(title.runs, run{text: "  " + c.Badge.Text, bold: true, size: 1200, color: toneColor(c.Badge.Tone)})
		}
		b := block{title}
		if c.Subtitle != "" {
			b = append(b, paragraph{level: 1, runs: []run{{text: c.Subtitle, italic: true, size: 1300, color: colorMuted}}})
		}
		for _, f := range c.Fields {
			b = append(b, labelled(f.Label, f.Value, 1))
		}
		if c.ImageURL != "" {
			b = append(b, labelled("Image", c.ImageURL, 1))
		}
		out = append(out, b)
	}
	if v.Empty != "" && len(v.Cards) == 0 {
		out = append(out, block{{runs: []run{{text: v.Empty, italic: true, size: 1400, color: colorMuted}}}})
	}
	if len(v.Footer) > 0 {
		var b block
		for _, f := range v.Footer {
			b = append(b, labelled(f.Label, f.Value, 0))
		}
		out = append(out, b)
	}
	return out
}

// paginate packs blocks onto as few slides as fit; continuation slides repeat the title
func paginate(v render.View) []pptxSlide {
	pages := []pptxSlide{{title: v.Title, subtitle: v.Subtitle}}
	for _, b := range viewBlocks(v) {
		cur := &pages[len(pages)-1]
		if len(cur.body) > 0 && len(cur.body)+len(b) > linesPerSlide {
			pages = append(pages, pptxSlide{title: v.Title + " (continued)", subtitle: v.Subtitle})
			cur = &pages[len(pages)-1]
		}
		cur.body = append(cur.body, b...)
	}
	return pages
}

func encodePPTX(doc *document) ([]byte, error) {
	var pages []pptxSlide
	for _, v := range doc.views {
		pages = append(pages, paginate(v)...)
	}

	parts := []pptxPart{
		{"[Content_Types].xml", contentTypesXML(len(pages))},
		{"_rels/.rels", rootRelsXML()},
		{"docProps/core.xml", corePropsXML(doc.title, doc.generatedAt)},
		{"docProps/app.xml", appPropsXML(len(pages))},
		{"ppt/presentation.xml", presentationXML(len(pages))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(len(pages))},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", relsXML(
			rel{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"},
			rel{"rId2", relTheme, "../theme/theme1.xml"},
		)},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", relsXML(
			rel{"rId1", relSlideMaster, "../slideMasters/slideMaster1.xml"},
		)},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for i, p := range pages {
		n := i + 1
		parts = append(parts,
			pptxPart{fmt.Sprintf("ppt/slides/slide%d.xml", n), slideXML(p)},
			pptxPart{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), relsXML(
				rel{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"},
			)},
		)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: doc.generatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish package: %w", err)
	}
	return buf.Bytes(), nil
}

type rel struct {
	id, typ, target string
}

func relsXML(rels ...rel) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsRel)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func rootRelsXML() string {
	return relsXML(
		rel{"rId1", relOfficeDoc, "ppt/presentation.xml"},
		rel{"rId2", relCoreProps, "docProps/core.xml"},
		rel{"rId3", relExtProps, "docProps/app.xml"},
	)
}

func contentTypesXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

func corePropsXML(title string, at time.Time) string {
	ts := at.UTC().Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + esc(title) + `</dc:title>` +
		`<dc:creator>pmp-reports</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func appPropsXML(slides int) string {
	return xmlHeader +
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
		`<Application>pmp-reports</Application>` +
		fmt.Sprintf(`<Slides>%d</Slides>`, slides) +
		`</Properties>`
}

func presentationXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slides; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, slideCX, slideCY)
	b.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML(slides int) string {
	rels := []rel{{"rId1", relSlideMaster, "slideMasters/slideMaster1.xml"}}
	for i := 1; i <= slides; i++ {
		rels = append(rels, rel{fmt.Sprintf("rId%d", i+1), relSlide, fmt.Sprintf("slides/slide%d.xml", i)})
	}
	rels = append(rels, rel{fmt.Sprintf("rId%d", slides+2), relTheme, "theme/theme1.xml"})
	return relsXML(rels...)
}

const groupShapeProps = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

func writeRun(b *strings.Builder, r run) {
	fmt.Fprintf(b, `<a:r><a:rPr lang="en-US" sz="%d"`, r.size)
	if r.bold {
		b.WriteString(` b="1"`)
	}
	if r.italic {
		b.WriteString(` i="1"`)
	}
	fmt.Fprintf(b, ` dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr><a:t>%s</a:t></a:r>`, hexColor(r.color), esc(r.text))
}

func writeShape(b *strings.Builder, id int, name string, x, y, cx, cy int, fill *rgb, paras []paragraph) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`, x, y, cx, cy)
	if fill != nil {
		fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, hexColor(*fill))
	} else {
		b.WriteString(`<a:noFill/>`)
	}
	b.WriteString(`</p:spPr><p:txBody><a:bodyPr wrap="square" lIns="457200" rtlCol="0" anchor="t"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	if len(paras) == 0 {
		b.WriteString(`<a:p><a:endParaRPr lang="en-US" dirty="0"/></a:p>`)
	}
	for _, p := range paras {
		b.WriteString(`<a:p>`)
		if p.level > 0 {
			fmt.Fprintf(b, `<a:pPr marL="%d" lvl="%d"/>`, 342900*p.level, p.level)
		}
		for _, r := range p.runs {
			writeRun(b, r)
		}
		b.WriteString(`</a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
}

func slideXML(s pptxSlide) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>`, nsA, nsR, nsP)
	b.WriteString(groupShapeProps)

	header := []paragraph{{runs: []run{{text: s.title, bold: true, size: 3200, color: colorWhite}}}}
	if s.subtitle != "" {
		header = append(header, paragraph{runs: []run{{text: s.subtitle, size: 1600, color: colorRule}}})
	}
	writeShape(&b, 2, "Title", 0, 0, slideCX, headerCY, &colorInk, header)
	writeShape(&b, 3, "Body", bodyX, bodyY, bodyCX, bodyCY, nil, s.body)

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

var slideMasterXML = xmlHeader +
	`<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:spTree>` + groupShapeProps + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" ` +
	`accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>` +
	`</p:sldMaster>`

var slideLayoutXML = xmlHeader +
	`<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank" preserve="1">` +
	`<p:cSld name="Blank"><p:spTree>` + groupShapeProps + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

var themeXML = xmlHeader +
	`<a:theme xmlns:a="` + nsA + `" name="Report">` +
	`<a:themeElements>` +
	`<a:clrScheme name="Report">` +
	`<a:dk1><a:srgbClr val="0F172A"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1E293B"/></a:dk2><a:lt2><a:srgbClr val="F1F5F9"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="2563EB"/></a:accent1><a:accent2><a:srgbClr val="16A34A"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="D97706"/></a:accent3><a:accent4><a:srgbClr val="DC2626"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="7C3AED"/></a:accent5><a:accent6><a:srgbClr val="0891B2"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="2563EB"/></a:hlink><a:folHlink><a:srgbClr val="7C3AED"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Report">` +
	`<a:majorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Report">` +
	`<a:fillStyleLst>` + strings.Repeat(`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, 3) + `</a:fillStyleLst>` +
	`<a:lnStyleLst>` + strings.Repeat(`<a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`, 3) + `</a:lnStyleLst>` +
	`<a:effectStyleLst>` + strings.Repeat(`<a:effectStyle><a:effectLst/></a:effectStyle>`, 3) + `</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` + strings.Repeat(`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, 3) + `</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements>` +
	`</a:theme>`
