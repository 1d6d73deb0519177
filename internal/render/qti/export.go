package qti

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mind-engage/mcq-docgen/internal/mcq"
	"github.com/mind-engage/mcq-docgen/internal/render"
)

// Small exporter that writes a manifest and one single-choice item per record.

const ManifestName = "imsmanifest.xml"

type Renderer struct{}

func (Renderer) ContentType() string { return "application/zip" }
func (Renderer) Extension() string   { return ".zip" }

func (Renderer) Render(ctx context.Context, records []mcq.Record) ([]byte, error) {
	return BuildPackage(ctx, records)
}

func init() { render.Register("qti", Renderer{}) }

// ItemID is the identifier of the i-th (0-based) record in the package.
func ItemID(i int) string { return fmt.Sprintf("q%d", i+1) }

func BuildPackage(ctx context.Context, records []mcq.Record) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	mf := imsManifest{
		Xmlns:     "http://www.imsglobal.org/xsd/imscp_v1p1",
		Resources: []imsResource{},
	}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := ItemID(i)
		itemName := id + ".xml"
		mf.Resources = append(mf.Resources, imsResource{
			Identifier: id,
			Type:       "imsqti_item_xmlv2p1",
			Href:       itemName,
			Files:      []imsFile{{Href: itemName}},
		})
		w, err := zw.Create(itemName)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, buildItemXML(id, rec)); err != nil {
			return nil, err
		}
	}

	mfw, err := zw.Create(ManifestName)
	if err != nil {
		return nil, err
	}
	b, err := xml.MarshalIndent(mf, "", "  ")
	if err != nil {
		return nil, err
	}
	if _, err := mfw.Write([]byte(xml.Header)); err != nil {
		return nil, err
	}
	if _, err := mfw.Write(b); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- mini XML model for manifest (export only) ---
type imsManifest struct {
	XMLName   xml.Name      `xml:"manifest"`
	Xmlns     string        `xml:"xmlns,attr,omitempty"`
	Resources []imsResource `xml:"resources>resource"`
}
type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}
type imsFile struct {
	Href string `xml:"href,attr"`
}

// ChoiceID names the choice for 1-based option number n.
func ChoiceID(n int) string { return fmt.Sprintf("CHOICE_%d", n) }

// Build a QTI-2.1 single-choice item. Only options found in the text are
// exported; padding slots are not, even when a real option reads "None".
func buildItemXML(id string, rec mcq.Record) string {
	detected := max(0, min(rec.Choices, len(rec.Options)))
	var choices strings.Builder
	for i, opt := range rec.Options[:detected] {
		fmt.Fprintf(&choices, "\n      <simpleChoice identifier=\"%s\">%s</simpleChoice>", ChoiceID(i+1), escape(opt))
	}
	var correct, processing string
	if n, ok := answerIndex(rec.Answer, detected); ok {
		correct = fmt.Sprintf("<value>%s</value>", ChoiceID(n))
		processing = scoring(rec)
	}
	var solution string
	if rec.Solution != "" {
		solution = fmt.Sprintf("\n  <modalFeedback outcomeIdentifier=\"FEEDBACK\" identifier=\"SOLUTION\" showHide=\"show\">%s</modalFeedback>",
			paragraphs(rec.Solution))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<assessmentItem identifier="%s" title="%s" adaptive="false" timeDependent="false" xmlns="http://www.imsglobal.org/xsd/imsqti_v2p1">
  <responseDeclaration identifier="RESPONSE" cardinality="single" baseType="identifier">
    <correctResponse>%s</correctResponse>
  </responseDeclaration>
  <outcomeDeclaration identifier="SCORE" cardinality="single" baseType="float" normalMaximum="%s">
    <defaultValue><value>0</value></defaultValue>
  </outcomeDeclaration>
  <outcomeDeclaration identifier="PENALTY" cardinality="single" baseType="float">
    <defaultValue><value>%s</value></defaultValue>
  </outcomeDeclaration>
  <itemBody>
    %s
    <choiceInteraction responseIdentifier="RESPONSE" shuffle="false" maxChoices="1">%s
    </choiceInteraction>
  </itemBody>%s%s
</assessmentItem>`,
		id, id, correct, escape(marks(rec.PositiveMarks)), escape(marks(rec.NegativeMarks)),
		paragraphs(rec.Stem), choices.String(), processing, solution,
	)
}

// scoring awards the positive marks for the correct choice and deducts the
// negative marks otherwise.
func scoring(rec mcq.Record) string {
	return fmt.Sprintf(`
  <responseProcessing>
    <responseCondition>
      <responseIf>
        <match><variable identifier="RESPONSE"/><correct identifier="RESPONSE"/></match>
        <setOutcomeValue identifier="SCORE"><baseValue baseType="float">%s</baseValue></setOutcomeValue>
      </responseIf>
      <responseElse>
        <setOutcomeValue identifier="SCORE"><baseValue baseType="float">%s</baseValue></setOutcomeValue>
      </responseElse>
    </responseCondition>
  </responseProcessing>`, escape(marks(rec.PositiveMarks)), escape(deduction(rec.NegativeMarks)))
}

// marks returns s as a float literal, "0" when it is not a number.
func marks(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func deduction(s string) string {
	f, err := strconv.ParseFloat(marks(s), 64)
	if err != nil || f == 0 {
		return "0"
	}
	return strconv.FormatFloat(-math.Abs(f), 'f', -1, 64)
}

func answerIndex(answer string, detected int) (int, bool) {
	if len(answer) != 1 || answer[0] < '1' || answer[0] > '5' {
		return 0, false
	}
	n := int(answer[0] - '0')
	return n, n <= detected
}

func paragraphs(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(escape(line))
		b.WriteString("</p>")
	}
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
