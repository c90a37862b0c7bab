package patent

import "github.com/nuri428/mcp-kipris/pkg/kipris"

// Kind is the JSON type of a tool argument.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindBoolean
)

// Format selects how records are rendered back to the caller.
type Format int

const (
	FormatMarkdown Format = iota
	FormatJSON
)

// Range bounds an integer argument, inclusive on both ends.
type Range struct {
	Min int
	Max int
}

// Param describes one tool argument and how it reaches the upstream query.
type Param struct {
	Name        string
	Kind        Kind
	Description string
	Required    bool
	Default     any
	Enum        []string
	Range       *Range
	// Rules holds extra validator tags, e.g. "max=200".
	Rules string
	// Upstream is the query name before camelCasing; defaults to Name.
	Upstream string
}

func (p Param) upstream() string {
	if p.Upstream != "" {
		return p.Upstream
	}
	return p.Name
}

// Definition is one row of the search table: everything needed to expose a
// KIPRIS endpoint as an MCP tool.
type Definition struct {
	Name            string
	Title           string
	Description     string
	Endpoint        string
	CredentialField string
	Path            string
	Params          []Param
	Format          Format
	// Columns selects and orders output fields; empty means all fields.
	Columns []string
	// Labels renames output fields after selection.
	Labels map[string]string
	// DedupeBy drops later records repeating this field's value.
	DedupeBy string
}

const (
	koreanRestPath = "/openapi/rest/patUtiModInfoSearchSevice/"
	koreanKipoPath = "/kipo-api/kipi/patUtiModInfoSearchSevice/"
	foreignPath    = "/openapi/rest/ForeignPatentAdvencedSearchService/"

	patentUtilityInfoPath = "response.body.items.PatentUtilityInfo"
	kipoItemsPath         = "response.body.items.item"
	kipoItemPath          = "response.body.item"
	foreignResultPath     = "response.body.items.searchResult"
)

var (
	// LastvalueCodes are the administrative status filters; empty means any.
	LastvalueCodes = []string{"", "A", "C", "F", "G", "I", "J", "R"}
	// SortSpecs order Korean search results.
	SortSpecs = []string{"PD", "AD", "GD", "OPD", "FD", "FOD", "RD"}
	// SortFields order foreign search results.
	SortFields = []string{"AD", "PD", "GD", "OPD", "FD", "FOD", "RD"}
	// Collections are the foreign patent offices KIPRIS mirrors.
	Collections = []string{"US", "EP", "WO", "JP", "PJ", "CP", "CN", "TW", "RU", "CO", "SE", "ES", "IL"}
)

var (
	summaryColumns   = []string{"ApplicationNumber", "ApplicationDate", "InventionName", "RegistrationStatus"}
	applicantColumns = []string{"Applicant", "InventionName", "ApplicationNumber", "ApplicationDate", "RegistrationStatus"}
	freeColumns      = []string{"ApplicationNumber", "ApplicationDate", "InventionName", "Applicant"}
	keywordColumns   = []string{
		"Applicant", "ApplicationDate", "ApplicationNumber", "Abstract",
		"InventionName", "InternationalpatentclassificationNumber", "RegistrationStatus",
	}
	keywordLabels = map[string]string{
		"InventionName":     "발명의 제목",
		"ApplicationNumber": "출원번호",
		"Abstract":          "발명의 개요",
		"InternationalpatentclassificationNumber": "IPC번호",
		"ApplicationDate":    "출원일",
		"RegistrationStatus": "등록상태",
		"Applicant":          "출원인",
	}
)

const maxTextRule = "max=200"

func required(name, description string) Param {
	return Param{Name: name, Kind: KindString, Description: description, Required: true, Rules: maxTextRule}
}

// koreanListParams are shared by the patUtiModInfoSearchSevice REST endpoints.
func koreanListParams() []Param {
	return []Param{
		{Name: "docs_start", Kind: KindInteger, Default: 1, Range: &Range{Min: 1, Max: 100000}, Description: "검색 시작 위치 (기본값: 1)"},
		{Name: "docs_count", Kind: KindInteger, Default: 10, Range: &Range{Min: 1, Max: 30}, Description: "검색 결과 수 (기본값: 10, 범위: 1-30)"},
		{Name: "patent", Kind: KindBoolean, Default: true, Description: "특허 포함 여부 (기본값: true)"},
		{Name: "utility", Kind: KindBoolean, Default: true, Description: "실용신안 포함 여부 (기본값: true)"},
		{Name: "lastvalue", Kind: KindString, Default: "", Enum: LastvalueCodes, Description: "행정처분 상태 코드 (A 공개, C 취하, F 소멸, G 포기, I 무효, J 거절, R 등록, 빈 값은 전체)"},
		{Name: "sort_spec", Kind: KindString, Default: "AD", Enum: SortSpecs, Description: "정렬 기준 (PD 공고일자, AD 출원일자, GD 등록일자, OPD 공개일자, FD 국제출원일자, FOD 국제공개일자, RD 우선권주장일자)"},
		{Name: "desc_sort", Kind: KindBoolean, Default: true, Description: "내림차순 정렬 여부 (기본값: true)"},
	}
}

// kipoListParams are shared by the kipo-api advanced search endpoint.
func kipoListParams() []Param {
	return []Param{
		{Name: "patent", Kind: KindBoolean, Default: true, Description: "특허 포함 여부 (기본값: true)"},
		{Name: "utility", Kind: KindBoolean, Default: true, Description: "실용신안 포함 여부 (기본값: true)"},
		{Name: "lastvalue", Kind: KindString, Default: "", Enum: LastvalueCodes, Description: "행정처분 상태 코드 (빈 값은 전체)"},
		{Name: "page_no", Kind: KindInteger, Default: 1, Range: &Range{Min: 1, Max: 100000}, Description: "페이지 번호 (기본값: 1)"},
		{Name: "num_of_rows", Kind: KindInteger, Default: 10, Range: &Range{Min: 1, Max: 500}, Description: "페이지당 결과 수 (기본값: 10)"},
		{Name: "sort_spec", Kind: KindString, Default: "AD", Enum: SortSpecs, Description: "정렬 기준"},
		{Name: "desc_sort", Kind: KindBoolean, Default: true, Description: "내림차순 정렬 여부 (기본값: true)"},
	}
}

// advancedFilters are the optional field filters of getAdvancedSearch.
func advancedFilters() []Param {
	text := func(name, description string) Param {
		return Param{Name: name, Kind: KindString, Description: description}
	}
	date := func(name, description string) Param {
		return Param{Name: name, Kind: KindString, Description: description + " (YYYYMMDD 또는 YYYYMMDD~YYYYMMDD)"}
	}

	return []Param{
		text("invention_title", "발명의 명칭에서 검색할 키워드"),
		{Name: "abst_cont", Kind: KindString, Upstream: "astrt_cont", Description: "초록에서 검색할 키워드"},
		text("claim_scope", "청구범위에서 검색할 키워드"),
		text("ipc_number", "IPC 분류 번호"),
		text("application_number", "출원번호"),
		text("open_number", "공개번호"),
		text("register_number", "등록번호"),
		text("priority_application_number", "우선권 주장 출원번호"),
		text("international_application_number", "국제출원번호"),
		text("international_open_number", "국제공개번호"),
		date("application_date", "출원일"),
		date("open_date", "공개일"),
		date("publication_date", "공고일"),
		date("register_date", "등록일"),
		date("priority_application_date", "우선권 주장일"),
		date("international_application_date", "국제출원일"),
		date("international_open_date", "국제공개일"),
		text("applicant", "출원인"),
		text("inventor", "발명자"),
		text("agent", "대리인"),
		{Name: "right_holder", Kind: KindString, Upstream: "right_holer", Description: "등록권자"},
	}
}

func foreignParams() []Param {
	return []Param{
		{Name: "current_page", Kind: KindInteger, Default: 1, Range: &Range{Min: 1, Max: 100000}, Description: "현재 페이지 번호 (기본값: 1)"},
		{Name: "sort_field", Kind: KindString, Default: "AD", Enum: SortFields, Description: "정렬 기준 필드"},
		{Name: "sort_state", Kind: KindBoolean, Default: true, Description: "정렬 상태 (기본값: true)"},
		{Name: "collection_values", Kind: KindString, Default: "US", Enum: Collections, Description: "검색 대상 국가: US(미국), EP(유럽), WO(PCT), JP(일본), PJ(일본영문초록), CP(중국), CN(중국특허영문초록), TW(대만영문초록), RU(러시아), CO(콜롬비아), SE(스웨덴), ES(스페인), IL(이스라엘)"},
	}
}

func with(first Param, rest ...[]Param) []Param {
	params := []Param{first}
	for _, group := range rest {
		params = append(params, group...)
	}
	return params
}

func foreign(name, operation, description string, key Param) Definition {
	return Definition{
		Name:            name,
		Description:     description,
		Endpoint:        foreignPath + operation,
		CredentialField: kipris.FieldAccessKey,
		Path:            foreignResultPath,
		Params:          with(key, foreignParams()),
		Format:          FormatMarkdown,
		Columns:         summaryColumns,
	}
}

// Definitions returns the full search table, Korean endpoints first.
func Definitions() []Definition {
	registrationNumber := required("registration_number", "등록번호")
	registrationNumber.Upstream = "register_number"

	foreignScope := " this tool is for foreign (US, EP, WO, JP, PJ, CP, CN, TW, RU, CO, SE, ES, IL) patent search"

	return []Definition{
		{
			Name:            "patent_applicant_search",
			Title:           "출원인 특허 검색",
			Description:     "Korean patent search by applicant name. Returns applicant, invention name, application number and date, and registration status as JSON.",
			Endpoint:        koreanRestPath + "applicantNameSearchInfo",
			CredentialField: kipris.FieldAccessKey,
			Path:            patentUtilityInfoPath,
			Params:          with(required("applicant", "출원인 이름"), koreanListParams()),
			Format:          FormatJSON,
			Columns:         applicantColumns,
		},
		{
			Name:            "patent_keyword_search",
			Title:           "키워드 특허 검색",
			Description:     "Korean patent search by keyword over the whole document. Returns JSON records with Korean field labels.",
			Endpoint:        koreanRestPath + "freeSearchInfo",
			CredentialField: kipris.FieldAccessKey,
			Path:            patentUtilityInfoPath,
			Params: with(
				Param{Name: "search_word", Kind: KindString, Required: true, Rules: maxTextRule, Upstream: "word", Description: "검색어"},
				koreanListParams(),
			),
			Format:   FormatJSON,
			Columns:  keywordColumns,
			Labels:   keywordLabels,
			DedupeBy: "ApplicationNumber",
		},
		{
			Name:            "patent_free_search",
			Title:           "자유 특허 검색",
			Description:     "Korean patent free-text search. Returns a markdown table of application number, date, invention name and applicant.",
			Endpoint:        koreanRestPath + "freeSearchInfo",
			CredentialField: kipris.FieldAccessKey,
			Path:            patentUtilityInfoPath,
			Params:          with(required("word", "검색어"), koreanListParams()),
			Format:          FormatMarkdown,
			Columns:         freeColumns,
			DedupeBy:        "ApplicationNumber",
		},
		{
			Name:            "patent_search",
			Title:           "특허 상세 조건 검색",
			Description:     "Korean patent advanced search. A keyword plus optional field filters (title, abstract, claims, IPC, numbers, dates, parties).",
			Endpoint:        koreanKipoPath + "getAdvancedSearch",
			CredentialField: kipris.FieldServiceKey,
			Path:            kipoItemsPath,
			Params:          append(with(required("word", "자유검색 키워드"), kipoListParams()), advancedFilters()...),
			Format:          FormatMarkdown,
			Columns:         summaryColumns,
		},
		{
			Name:            "patent_righter_search",
			Title:           "권리자 특허 검색",
			Description:     "Korean patent search by right holder name. Returns a markdown table of application number, date, invention name and registration status.",
			Endpoint:        koreanRestPath + "rightHolerSearchInfo",
			CredentialField: kipris.FieldAccessKey,
			Path:            patentUtilityInfoPath,
			Params: with(
				Param{Name: "righter_name", Kind: KindString, Required: true, Rules: maxTextRule, Upstream: "rightHoler", Description: "권리자 이름"},
				koreanListParams(),
			),
			Format:  FormatMarkdown,
			Columns: summaryColumns,
		},
		{
			Name:            "patent_application_number_search",
			Title:           "출원번호 특허 검색",
			Description:     "Korean patent search by application number. Returns every field KIPRIS reports as JSON.",
			Endpoint:        koreanRestPath + "applicationNumberSearchInfo",
			CredentialField: kipris.FieldAccessKey,
			Path:            patentUtilityInfoPath,
			Params:          with(required("application_number", "출원번호"), koreanListParams()),
			Format:          FormatJSON,
		},
		{
			Name:            "patent_summary_search",
			Title:           "특허 서지 요약 조회",
			Description:     "Korean patent bibliography summary by application number, as JSON.",
			Endpoint:        koreanKipoPath + "getBibliographySumryInfoSearch",
			CredentialField: kipris.FieldServiceKey,
			Path:            kipoItemsPath,
			Params:          []Param{required("application_number", "출원번호")},
			Format:          FormatJSON,
		},
		{
			Name:            "patent_detail_search",
			Title:           "특허 서지 상세 조회",
			Description:     "Korean patent bibliography detail by application number, as JSON. Nested sections are returned as JSON strings.",
			Endpoint:        koreanKipoPath + "getBibliographyDetailInfoSearch",
			CredentialField: kipris.FieldServiceKey,
			Path:            kipoItemPath,
			Params:          []Param{required("application_number", "출원번호")},
			Format:          FormatJSON,
		},
		{
			Name:            "patent_open_number_search",
			Title:           "공개번호 특허 검색",
			Description:     "Korean patent search by publication (open) number.",
			Endpoint:        koreanKipoPath + "getAdvancedSearch",
			CredentialField: kipris.FieldServiceKey,
			Path:            kipoItemsPath,
			Params:          with(required("open_number", "공개번호"), kipoListParams()),
			Format:          FormatMarkdown,
			Columns:         summaryColumns,
		},
		{
			Name:            "patent_registration_number_search",
			Title:           "등록번호 특허 검색",
			Description:     "Korean patent search by registration number.",
			Endpoint:        koreanKipoPath + "getAdvancedSearch",
			CredentialField: kipris.FieldServiceKey,
			Path:            kipoItemsPath,
			Params:          with(registrationNumber, kipoListParams()),
			Format:          FormatMarkdown,
			Columns:         summaryColumns,
		},
		func() Definition {
			d := foreign("foreign_patent_applicant_search", "applicantSearch",
				"foreign patent search by applicant name,"+foreignScope, required("applicant", "출원인 이름"))
			d.Columns = nil
			return d
		}(),
		foreign("foreign_patent_application_number_search", "applicationNumberSearch",
			"foreign patent search by application number,"+foreignScope, required("application_number", "출원번호")),
		foreign("foreign_patent_free_search", "freeSearch",
			"foreign patent free-text search,"+foreignScope,
			Param{Name: "word", Kind: KindString, Required: true, Rules: maxTextRule, Upstream: "free", Description: "검색어"}),
		foreign("foreign_international_application_number_search", "internationalApplicationNumberSearch",
			"foreign patent search by international application number,"+foreignScope,
			required("international_application_number", "국제출원번호")),
		foreign("foreign_international_open_number_search", "internationalOpenNumberSearch",
			"foreign patent search by international open number,"+foreignScope,
			required("international_open_number", "국제공개번호")),
	}
}
