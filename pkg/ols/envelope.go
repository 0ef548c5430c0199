package ols

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/compomics/ols-dialog/pkg/model"
)

const (
	soapEnvNS = "http://schemas.xmlsoap.org/soap/envelope/"
	xsiNS     = "http://www.w3.org/2001/XMLSchema-instance"
	xsdNS     = "http://www.w3.org/2001/XMLSchema"
)

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soapenv:Envelope"`
	SoapEnv string      `xml:"xmlns:soapenv,attr"`
	XSI     string      `xml:"xmlns:xsi,attr"`
	XSD     string      `xml:"xmlns:xsd,attr"`
	Body    requestBody `xml:"soapenv:Body"`
}

type requestBody struct {
	Call requestCall
}

type requestCall struct {
	XMLName xml.Name
	Params  []param
}

// param is one argument of an operation.
type param struct {
	XMLName xml.Name
	Type    string `xml:"xsi:type,attr,omitempty"`
	Nil     string `xml:"xsi:nil,attr,omitempty"`
	Value   string `xml:",chardata"`
}

func str(name, value string) param {
	return param{XMLName: xml.Name{Local: name}, Type: "xsd:string", Value: value}
}

// num carries numbers and booleans, whose text is already formatted.
func num(name, value string) param {
	return param{XMLName: xml.Name{Local: name}, Value: value}
}

func null(name string) param {
	return param{XMLName: xml.Name{Local: name}, Nil: "true"}
}

func encodeRequest(op string, params []param) ([]byte, error) {
	env := requestEnvelope{
		SoapEnv: soapEnvNS,
		XSI:     xsiNS,
		XSD:     xsdNS,
		Body: requestBody{Call: requestCall{
			XMLName: xml.Name{Space: Namespace, Local: op},
			Params:  params,
		}},
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", op, err)
	}
	return buf.Bytes(), nil
}

// item covers both map entries and annotation records.
type item struct {
	Key                   string `xml:"key"`
	Value                 string `xml:"value"`
	TermID                string `xml:"termId"`
	TermName              string `xml:"termName"`
	AnnotationType        string `xml:"annotationType"`
	AnnotationNumberValue string `xml:"annotationNumberValue"`
	AnnotationStringValue string `xml:"annotationStringValue"`
}

type returnValue struct {
	Text  string `xml:",chardata"`
	Items []item `xml:"item"`
}

// terms keeps service order and drops entries without an ID.
func (r *returnValue) terms() []model.Term {
	out := make([]model.Term, 0, len(r.Items))
	for _, it := range r.Items {
		id := strings.TrimSpace(it.Key)
		if id == "" {
			continue
		}
		out = append(out, model.Term{ID: id, Name: strings.TrimSpace(it.Value)})
	}
	return out
}

func (r *returnValue) pairs() []model.Pair {
	out := make([]model.Pair, 0, len(r.Items))
	for _, it := range r.Items {
		key := strings.TrimSpace(it.Key)
		if key == "" {
			continue
		}
		out = append(out, model.Pair{Key: key, Value: strings.TrimSpace(it.Value)})
	}
	return out
}

type responseEnvelope struct {
	Body struct {
		Fault    *Fault `xml:"Fault"`
		Response *struct {
			XMLName xml.Name
			Return  *returnValue `xml:",any"`
		} `xml:",any"`
	} `xml:"Body"`
}

var errEmptyResponse = errors.New("empty response")

// decodeResponse returns the operation's return element, or the fault the
// service raised instead.
func decodeResponse(data []byte) (*returnValue, *Fault, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, errEmptyResponse
	}
	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("decoding response: %w", err)
	}
	if env.Body.Fault != nil {
		return nil, env.Body.Fault, nil
	}
	if env.Body.Response == nil {
		return nil, nil, errors.New("response body has no result element")
	}
	if env.Body.Response.Return == nil {
		return &returnValue{}, nil, nil
	}
	return env.Body.Response.Return, nil, nil
}
