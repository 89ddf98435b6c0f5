package domain

// NotRelevantLabel is the distinguished classifier label used to derive the
// relevancy score (1 - P(NotRelevantLabel)). It is not part of the tracked
// topic catalog.
const NotRelevantLabel = "Not Relevant to ESG"

// TopicCatalogVersion identifies the seed list below. Alternate taxonomies
// (LkSG, SDG) would be separate named catalogs, not edits to this one.
const TopicCatalogVersion = 1

// TopicCatalog is the fixed set of sustainability indicators seeded into the
// store exactly once, at first-ever initialization.
var TopicCatalog = []string{
	"Surface Water Pollution",
	"Biodiversity",
	"Wastewater Management",
	"Hazardous Materials Management",
	"Disclosure",
	"Soil and Groundwater Impact",
	"Animal Welfare",
	"Communities Health and Safety",
	"Corporate Governance",
	"Responsible Investment & Greenwashing",
	"Supply Chain (Economic / Governance)",
	"Strategy Implementation",
	"Climate Risks",
	"Discrimination",
	"Employee Health and Safety",
	"Risk Management and Internal Control",
	"Legal Proceedings & Law Violations",
	"Emergencies (Environmental)",
	"Environmental Management",
	"Land Rehabilitation",
	"Freedom of Association and Right to Organise",
	"Air Pollution",
	"Cultural Heritage",
	"Forced Labour",
	"Labor Relations Management",
	"Water Consumption",
	"Greenhouse Gas Emissions",
	"Supply Chain (Environmental)",
	"Product Safety and Quality",
	"Emergencies (Social)",
	"Natural Resources",
	"Human Rights",
	"Physical Impacts",
	"Land Acquisition and Resettlement (E)",
	"Waste Management",
	"Indigenous People",
	"Retrenchment",
	"Supply Chain (Social)",
	"Land Acquisition and Resettlement (S)",
	"Minimum Age and Child Labour",
	"Energy Efficiency and Renewables",
	"Landscape Transformation",
	"Data Safety",
	"Economic Crime",
	"Planning Limitations",
	"Values and Ethics",
}
